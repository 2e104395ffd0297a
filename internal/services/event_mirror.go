package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"pixelgate/internal/models"
	"pixelgate/internal/repository"
	"pixelgate/internal/validation"

	"github.com/mssola/user_agent"
	"golang.org/x/sync/errgroup"
)

// Link-preview fetchers that user_agent does not flag as bots.
var previewAgents = []string{"facebookexternalhit", "whatsapp/", "telegrambot", "slackbot", "discordbot", "twitterbot"}

// Visitor is who asked for the page, as seen by the server.
type Visitor struct {
	IP        string
	UserAgent string
}

func (v Visitor) IsBot() bool {
	if v.UserAgent == "" {
		return false
	}
	lower := strings.ToLower(v.UserAgent)
	for _, a := range previewAgents {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return user_agent.New(v.UserAgent).Bot()
}

type ConversionSender interface {
	Send(ctx context.Context, ev ConversionEvent) (SendResult, error)
}

type PageLookup interface {
	GetByID(ctx context.Context, id string) (*models.WhatsAppPage, error)
}

type PixelLookup interface {
	GetByID(ctx context.Context, id string) (*models.Pixel, error)
}

// EventMirror fires the server-side copy of browser pixel events. Every
// failure here is logged and swallowed except where noted, so a visitor is
// never held up by the ads platform.
type EventMirror struct {
	sender ConversionSender
	pages  PageLookup
	pixels PixelLookup
	logger *slog.Logger
	limit  int
}

func NewEventMirror(sender ConversionSender, pages PageLookup, pixels PixelLookup, logger *slog.Logger) *EventMirror {
	return &EventMirror{
		sender: sender,
		pages:  pages,
		pixels: pixels,
		logger: logger,
		limit:  4,
	}
}

// PageEvents is one page render's worth of server-side events. All events
// share EventID so the platform can match them with the browser's.
type PageEvents struct {
	PixelID   string
	Events    []models.MetaEvent
	EventID   string
	SourceURL string
	Visitor   Visitor
}

// FirePageEvents sends every event concurrently and returns how many were
// accepted. It never fails.
func (m *EventMirror) FirePageEvents(ctx context.Context, pe PageEvents) int {
	if pe.PixelID == "" || len(pe.Events) == 0 {
		return 0
	}
	if pe.Visitor.IsBot() {
		m.logger.Debug("capi_bot_skip", "user_agent", pe.Visitor.UserAgent, "source_url", pe.SourceURL)
		return 0
	}

	results := make([]bool, len(pe.Events))
	var g errgroup.Group
	g.SetLimit(m.limit)
	for i, name := range pe.Events {
		g.Go(func() error {
			res, err := m.sender.Send(ctx, ConversionEvent{
				PixelID:        pe.PixelID,
				EventName:      name,
				EventID:        pe.EventID,
				EventSourceURL: pe.SourceURL,
				ClientIP:       pe.Visitor.IP,
				UserAgent:      pe.Visitor.UserAgent,
			})
			if err != nil {
				return err
			}
			results[i] = !res.Skipped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.logger.Error("capi_page_events_failed", "error", err, "events", pe.Events, "source_url", pe.SourceURL)
	}

	sent := 0
	for _, ok := range results {
		if ok {
			sent++
		}
	}
	return sent
}

// TrackResult says whether a track-redirect call reached the Conversion API.
type TrackResult struct {
	Tracked bool `json:"tracked"`
}

// TrackRedirect mirrors a browser redirect or button event for the page
// named in in. origin is scheme://host used to build the source URL.
// Unknown pages return repository.ErrNotFound; a failed send is returned so
// the caller can report it.
func (m *EventMirror) TrackRedirect(ctx context.Context, in validation.TrackRedirectInput, origin string, v Visitor) (TrackResult, error) {
	page, err := m.pages.GetByID(ctx, in.PageID)
	if err != nil {
		return TrackResult{}, err
	}

	if page.PixelConfigID == "" {
		m.logger.Info("track_redirect_no_pixel", "page_id", page.ID)
		return TrackResult{}, nil
	}
	pixel, err := m.pixels.GetByID(ctx, page.PixelConfigID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			m.logger.Error("track_redirect_pixel_not_found", "page_id", page.ID, "pixel_config_id", page.PixelConfigID)
			return TrackResult{}, nil
		}
		return TrackResult{}, err
	}
	if v.IsBot() {
		m.logger.Debug("capi_bot_skip", "user_agent", v.UserAgent, "page_id", page.ID)
		return TrackResult{}, nil
	}

	res, err := m.sender.Send(ctx, ConversionEvent{
		PixelID:        pixel.PixelID,
		EventName:      in.EventName,
		EventID:        in.EventID,
		EventSourceURL: SourceURL(origin, "w", page.Slug),
		ClientIP:       v.IP,
		UserAgent:      v.UserAgent,
	})
	if err != nil {
		return TrackResult{}, err
	}

	m.logger.Info("track_redirect_sent", "page_id", page.ID, "event", in.EventName, "event_id", in.EventID, "pixel_id", pixel.PixelID)
	return TrackResult{Tracked: !res.Skipped}, nil
}

// SourceURL is the public page URL reported as event_source_url.
func SourceURL(origin, kind, slug string) string {
	return strings.TrimRight(origin, "/") + "/" + kind + "/" + slug
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pixelgate/internal/config"
	"pixelgate/internal/metrics"
	"pixelgate/internal/models"
)

// ConversionEvent is one server-side event for the ads Conversion API.
type ConversionEvent struct {
	PixelID        string
	EventName      models.MetaEvent
	EventID        string
	EventSourceURL string
	ClientIP       string
	UserAgent      string
}

type SendResult struct {
	Skipped bool
}

// ConversionError is returned when the Conversion API answers non-2xx.
type ConversionError struct {
	StatusCode int
	Body       string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("CAPI send failed: %d", e.StatusCode)
}

type ConversionClient struct {
	graphURL      string
	apiVersion    string
	token         string
	testEventCode string
	httpClient    *http.Client
	logger        *slog.Logger
	now           func() time.Time
}

func NewConversionClient(cfg config.Config, logger *slog.Logger) *ConversionClient {
	return &ConversionClient{
		graphURL:      strings.TrimRight(cfg.FBGraphURL, "/"),
		apiVersion:    cfg.FBAPIVersion,
		token:         cfg.FBPixelAPIToken,
		testEventCode: cfg.FBTestEventCode,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
		now:           time.Now,
	}
}

func (c *ConversionClient) Enabled() bool {
	return c.token != ""
}

type capiUserData struct {
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
}

type capiEvent struct {
	EventName      models.MetaEvent `json:"event_name"`
	EventTime      int64            `json:"event_time"`
	ActionSource   string           `json:"action_source"`
	EventSourceURL string           `json:"event_source_url"`
	EventID        string           `json:"event_id"`
	UserData       *capiUserData    `json:"user_data,omitempty"`
}

type capiPayload struct {
	Data          []capiEvent `json:"data"`
	AccessToken   string      `json:"access_token"`
	TestEventCode string      `json:"test_event_code,omitempty"`
}

// Send posts ev as a single-event batch. Without a token it is a no-op that
// reports Skipped.
func (c *ConversionClient) Send(ctx context.Context, ev ConversionEvent) (SendResult, error) {
	if !c.Enabled() {
		c.logger.Info("capi_skipped", "reason", "FB_PIXEL_API_TOKEN missing", "event", ev.EventName, "pixel_id", ev.PixelID)
		metrics.ConversionEventsTotal.WithLabelValues(string(ev.EventName), "skipped").Inc()
		return SendResult{Skipped: true}, nil
	}

	event := capiEvent{
		EventName:      ev.EventName,
		EventTime:      c.now().Unix(),
		ActionSource:   "website",
		EventSourceURL: ev.EventSourceURL,
		EventID:        ev.EventID,
	}
	if ev.ClientIP != "" || ev.UserAgent != "" {
		event.UserData = &capiUserData{ClientIPAddress: ev.ClientIP, ClientUserAgent: ev.UserAgent}
	}
	body, err := json.Marshal(capiPayload{
		Data:          []capiEvent{event},
		AccessToken:   c.token,
		TestEventCode: c.testEventCode,
	})
	if err != nil {
		return SendResult{}, err
	}

	url := fmt.Sprintf("%s/%s/%s/events", c.graphURL, c.apiVersion, ev.PixelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ConversionEventsTotal.WithLabelValues(string(ev.EventName), "failed").Inc()
		return SendResult{}, fmt.Errorf("CAPI send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("capi_send_failed", "status", resp.StatusCode, "body", string(text), "event", ev.EventName, "pixel_id", ev.PixelID)
		metrics.ConversionEventsTotal.WithLabelValues(string(ev.EventName), "failed").Inc()
		return SendResult{}, &ConversionError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	c.logger.Info("capi_send_ok", "event", ev.EventName, "pixel_id", ev.PixelID, "event_id", ev.EventID)
	metrics.ConversionEventsTotal.WithLabelValues(string(ev.EventName), "sent").Inc()
	return SendResult{}, nil
}

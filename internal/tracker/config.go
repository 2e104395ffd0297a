package tracker

import (
	"time"

	"pixelgate/internal/models"
)

// TrackRedirectPath is where the browser mirrors redirect and button events.
const TrackRedirectPath = "/api/whatsapp/track-redirect"

// PageConfig is everything the WhatsApp page runtime needs, serialized into
// the rendered page and shared with Session.
type PageConfig struct {
	PageID          string              `json:"pageId"`
	PixelID         string              `json:"pixelId,omitempty"`
	Events          []models.MetaEvent  `json:"events"`
	EventID         string              `json:"eventId"`
	RedirectEvent   models.MetaEvent    `json:"redirectEvent"`
	ButtonEvent     models.MetaEvent    `json:"buttonEvent"`
	RedirectEventID string              `json:"redirectEventId"`
	TargetURL       string              `json:"targetUrl"`
	TrackURL        string              `json:"trackUrl"`
	Mode            models.RedirectMode `json:"mode"`
	RedirectDelay   int                 `json:"redirectDelay"`

	VacancyCount    int `json:"vacancyCount"`
	VacancyInterval int `json:"vacancyInterval"`

	SocialProofEnabled  bool `json:"socialProofEnabled"`
	SocialProofInterval int  `json:"socialProofInterval"`

	CarouselAutoPlay bool `json:"carouselAutoPlay"`
	CarouselInterval int  `json:"carouselInterval"`
	CarouselSize     int  `json:"carouselSize"`

	GraceMS int `json:"graceMs"`
}

// NewPageConfig builds the runtime config for page. pixel may be nil, in
// which case nothing is tracked in the browser.
func NewPageConfig(page *models.WhatsAppPage, pixel *models.Pixel, eventID, redirectEventID string) PageConfig {
	cfg := PageConfig{
		PageID:              page.ID,
		Events:              page.Events,
		EventID:             eventID,
		RedirectEvent:       page.RedirectEvent,
		ButtonEvent:         page.EffectiveButtonEvent(),
		RedirectEventID:     redirectEventID,
		TargetURL:           page.WhatsAppURL,
		TrackURL:            TrackRedirectPath,
		Mode:                page.RedirectMode,
		RedirectDelay:       page.RedirectDelay,
		VacancyCount:        page.VacancyCount,
		VacancyInterval:     page.VacancyDecrementInterval,
		SocialProofEnabled:  page.SocialProofEnabled,
		SocialProofInterval: page.SocialProofInterval,
		CarouselAutoPlay:    page.CarouselAutoPlay,
		CarouselInterval:    page.CarouselInterval,
		CarouselSize:        len(page.SocialProofCarouselItems),
		GraceMS:             int(NavigationGrace / time.Millisecond),
	}
	if pixel != nil {
		cfg.PixelID = pixel.PixelID
	}
	if cfg.Events == nil {
		cfg.Events = []models.MetaEvent{}
	}
	return cfg
}

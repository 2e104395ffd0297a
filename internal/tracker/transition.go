package tracker

import (
	"sync"
	"time"

	"pixelgate/internal/models"
)

// TransitionDelay is how long the product transition page stays up.
const TransitionDelay = 2500 * time.Millisecond

// TransitionConfig drives the /t/{slug} page runtime.
type TransitionConfig struct {
	PixelID   string             `json:"pixelId"`
	Events    []models.MetaEvent `json:"events"`
	EventID   string             `json:"eventId"`
	TargetURL string             `json:"targetUrl"`
	DelayMS   int                `json:"delayMs"`
}

func NewTransitionConfig(product *models.Product, pixel *models.Pixel, eventID string) TransitionConfig {
	events := make([]models.MetaEvent, 0, len(product.Events))
	for _, e := range models.DedupeEvents(product.Events) {
		if e.Valid() {
			events = append(events, e)
		}
	}
	cfg := TransitionConfig{
		Events:    events,
		EventID:   eventID,
		TargetURL: product.AffiliateURL,
		DelayMS:   int(TransitionDelay / time.Millisecond),
	}
	if pixel != nil {
		cfg.PixelID = pixel.PixelID
	}
	return cfg
}

// Transition fires PageView and the product's events once, all under one
// event id, then navigates after TransitionDelay.
type Transition struct {
	mu        sync.Mutex
	cfg       TransitionConfig
	clock     Clock
	pixel     Pixel
	nav       Navigator
	sent      map[models.MetaEvent]bool
	timer     Timer
	navigated bool
	stopped   bool
}

func NewTransition(cfg TransitionConfig, clock Clock, pixel Pixel, nav Navigator) *Transition {
	if clock == nil {
		clock = Real()
	}
	return &Transition{cfg: cfg, clock: clock, pixel: pixel, nav: nav, sent: make(map[models.MetaEvent]bool)}
}

func (t *Transition) Mount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}

	if t.pixel != nil && t.cfg.PixelID != "" {
		if len(t.sent) == 0 {
			t.pixel.Init(t.cfg.PixelID)
		}
		t.track(models.EventPageView)
		for _, e := range t.cfg.Events {
			t.track(e)
		}
	}

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = t.clock.AfterFunc(TransitionDelay, t.navigate)
}

func (t *Transition) track(e models.MetaEvent) {
	if t.sent[e] {
		return
	}
	t.sent[e] = true
	t.pixel.Track(e, t.cfg.EventID)
}

func (t *Transition) navigate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.navigated {
		return
	}
	t.navigated = true
	if t.nav != nil {
		t.nav.Navigate(t.cfg.TargetURL)
	}
}

func (t *Transition) Unmount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *Transition) Navigated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.navigated
}

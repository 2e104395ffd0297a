package tracker

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"pixelgate/internal/logging"
	"pixelgate/internal/models"
)

const (
	EntrySDKInit      = "sdk_init"
	EntryTrack        = "track"
	EntryMirror       = "mirror"
	EntryCountdown    = "countdown"
	EntryVacancy      = "vacancy"
	EntryNotification = "notification"
	EntryClick        = "click"
	EntryNavigate     = "navigate"
)

// TimelineEntry is one observable step of a simulated page view.
type TimelineEntry struct {
	AtMS   int64  `json:"atMs"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

type Timeline struct {
	Entries []TimelineEntry `json:"entries"`
	Final   Snapshot        `json:"final"`
}

// SimulateOptions tune a simulation. A zero ClickAt means no click.
type SimulateOptions struct {
	Horizon time.Duration
	ClickAt time.Duration
	Seed    int64
}

// recorder plays Pixel, Mirror and Navigator for a simulation.
type recorder struct {
	mu      sync.Mutex
	clock   *ManualClock
	start   time.Time
	entries []TimelineEntry
	last    Snapshot
}

func (r *recorder) add(kind, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at := r.clock.Now().Sub(r.start)
	r.entries = append(r.entries, TimelineEntry{AtMS: at.Milliseconds(), Kind: kind, Detail: detail})
}

func (r *recorder) Init(pixelID string) { r.add(EntrySDKInit, pixelID) }

func (r *recorder) Track(event models.MetaEvent, eventID string) {
	r.add(EntryTrack, fmt.Sprintf("%s eventID=%s", event, eventID))
}

func (r *recorder) Mirror(_ context.Context, req MirrorRequest) error {
	r.add(EntryMirror, fmt.Sprintf("%s eventID=%s", req.EventName, req.EventID))
	return nil
}

func (r *recorder) Navigate(url string) { r.add(EntryNavigate, url) }

// observe records counter and notification changes between renders.
func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	prev := r.last
	r.last = s
	r.mu.Unlock()

	if prev.Phase == "" {
		switch s.Phase {
		case PhaseCountingDown:
			r.add(EntryCountdown, fmt.Sprint(s.Countdown))
		case PhaseVacancyActive:
			r.add(EntryVacancy, fmt.Sprint(s.Vacancy))
		}
	} else {
		if s.Countdown != prev.Countdown {
			r.add(EntryCountdown, fmt.Sprint(s.Countdown))
		}
		if s.Vacancy != prev.Vacancy {
			r.add(EntryVacancy, fmt.Sprint(s.Vacancy))
		}
	}
	switch {
	case s.Notification != nil && (prev.Notification == nil || *prev.Notification != *s.Notification):
		r.add(EntryNotification, s.Notification.Name+" de "+s.Notification.City)
	case s.Notification == nil && prev.Notification != nil:
		r.add(EntryNotification, "hidden")
	}
}

// Simulate runs a Session for cfg on a manual clock and returns what the
// visitor's browser would do during opts.Horizon.
func Simulate(cfg PageConfig, opts SimulateOptions) Timeline {
	start := time.Unix(0, 0).UTC()
	clock := NewManualClock(start)
	rec := &recorder{clock: clock, start: start}

	session := NewSession(cfg, Deps{
		Clock:     clock,
		Pixel:     rec,
		Mirror:    rec,
		Navigator: rec,
		Logger:    logging.Discard(),
		Rand:      rand.New(rand.NewSource(opts.Seed)),
		Dispatch:  func(f func()) { f() },
		OnRender:  rec.observe,
	})
	session.Mount()
	if opts.ClickAt > 0 && opts.ClickAt < opts.Horizon {
		clock.Advance(opts.ClickAt)
		rec.add(EntryClick, "")
		session.Click()
		clock.Advance(opts.Horizon - opts.ClickAt)
	} else {
		clock.Advance(opts.Horizon)
	}
	final := session.Snapshot()
	session.Unmount()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return Timeline{Entries: rec.entries, Final: final}
}

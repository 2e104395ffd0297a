package tracker

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"pixelgate/internal/models"
)

// NavigationGrace is how long navigation waits after a redirect or button
// event so the pixel SDK call can flush.
const NavigationGrace = 100 * time.Millisecond

type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseSDKReady      Phase = "sdk_ready"
	PhaseCountingDown  Phase = "counting_down"
	PhaseVacancyActive Phase = "vacancy_active"
	PhaseAwaitingClick Phase = "awaiting_click"
	PhaseRedirectFired Phase = "redirect_fired"
	PhaseNavigated     Phase = "navigated"
	PhaseStopped       Phase = "stopped"
)

// Dedup keys. Load events are keyed "load:<event>".
const (
	ActionRedirect = "redirect"
	ActionButton   = "button"
)

func loadAction(e models.MetaEvent) string {
	return "load:" + string(e)
}

// Pixel is the browser ads SDK.
type Pixel interface {
	Init(pixelID string)
	Track(event models.MetaEvent, eventID string)
}

// MirrorRequest is the body of a track-redirect call.
type MirrorRequest struct {
	PageID    string           `json:"pageId"`
	EventName models.MetaEvent `json:"eventName"`
	EventID   string           `json:"eventId"`
}

// Mirror sends a redirect or button event to the server.
type Mirror interface {
	Mirror(ctx context.Context, req MirrorRequest) error
}

type Navigator interface {
	Navigate(url string)
}

// Deps are a Session's collaborators. Pixel, Mirror and Navigator are called
// with the session lock held and must not call back into the session.
type Deps struct {
	Clock     Clock
	Pixel     Pixel
	Mirror    Mirror
	Navigator Navigator
	Logger    *slog.Logger
	// Rand drives the social proof notifier. Nil seeds from the clock.
	Rand *rand.Rand
	// Dispatch runs mirror calls. Nil starts a goroutine per call.
	Dispatch func(func())
	// OnRender observes every visible state change.
	OnRender func(Snapshot)
}

// Snapshot is what the page would currently display.
type Snapshot struct {
	Phase        Phase         `json:"phase"`
	Countdown    int           `json:"countdown"`
	Vacancy      int           `json:"vacancy"`
	Fired        []string      `json:"fired"`
	Notification *Notification `json:"notification,omitempty"`
}

// Session runs one WhatsApp page view: SDK init and load events, then the
// countdown, vacancy counter or click wait, then exactly one redirect.
type Session struct {
	mu   sync.Mutex
	cfg  PageConfig
	deps Deps

	phase     Phase
	mounted   bool
	sdkReady  bool
	fired     map[string]bool
	countdown int

	countdownTimer Timer
	navTimer       Timer
	vacancy        *VacancyCounter
	notifier       *SocialProofNotifier
}

func NewSession(cfg PageConfig, deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = Real()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Dispatch == nil {
		deps.Dispatch = func(f func()) { go f() }
	}
	return &Session{
		cfg:       cfg,
		deps:      deps,
		phase:     PhaseUninitialized,
		fired:     make(map[string]bool),
		countdown: cfg.RedirectDelay,
	}
}

// Mount starts the page. Calling it again, as a re-render would, changes
// nothing.
func (s *Session) Mount() {
	s.mu.Lock()
	if s.mounted || s.phase == PhaseStopped {
		s.mu.Unlock()
		return
	}
	s.mounted = true

	if s.cfg.PixelID != "" && s.deps.Pixel != nil && !s.sdkReady {
		s.deps.Pixel.Init(s.cfg.PixelID)
		s.sdkReady = true
		s.phase = PhaseSDKReady
		s.trackLoadLocked(models.EventPageView)
		for _, e := range s.cfg.Events {
			s.trackLoadLocked(e)
		}
	}

	switch s.cfg.Mode {
	case models.ModeAutoRedirect:
		if s.countdown <= 0 {
			s.countdown = 1
		}
		s.phase = PhaseCountingDown
		s.countdownTimer = s.deps.Clock.Every(time.Second, s.tick)
	case models.ModeVacancyCounter:
		s.phase = PhaseVacancyActive
		s.vacancy = NewVacancyCounter(s.deps.Clock, s.cfg.VacancyCount, time.Duration(s.cfg.VacancyInterval)*time.Second, func(int) { s.render() })
		s.vacancy.Start()
	default:
		s.phase = PhaseAwaitingClick
	}

	if s.cfg.SocialProofEnabled {
		s.notifier = NewSocialProofNotifier(s.deps.Clock, time.Duration(s.cfg.SocialProofInterval)*time.Second, s.deps.Rand, func(*Notification) { s.render() })
		s.notifier.Start()
	}
	s.mu.Unlock()

	s.render()
}

func (s *Session) trackLoadLocked(e models.MetaEvent) {
	key := loadAction(e)
	if s.fired[key] {
		return
	}
	s.fired[key] = true
	s.deps.Pixel.Track(e, s.cfg.EventID)
}

func (s *Session) tick() {
	s.mu.Lock()
	if s.phase != PhaseCountingDown {
		s.mu.Unlock()
		return
	}
	if s.countdown <= 1 {
		s.countdown = 0
		s.fireLocked(ActionRedirect, s.cfg.RedirectEvent)
	} else {
		s.countdown--
	}
	s.mu.Unlock()

	s.render()
}

// Click handles the call-to-action button. It reports whether the click
// fired anything; clicks after a redirect or button event are no-ops.
func (s *Session) Click() bool {
	s.mu.Lock()
	if !s.mounted || s.phase == PhaseStopped {
		s.mu.Unlock()
		return false
	}
	ok := s.fireLocked(ActionButton, s.cfg.ButtonEvent)
	s.mu.Unlock()

	if ok {
		s.render()
	}
	return ok
}

// fireLocked tracks event under action, mirrors it, and schedules the
// navigation. Only the first redirect or button action goes through.
func (s *Session) fireLocked(action string, event models.MetaEvent) bool {
	if s.fired[ActionRedirect] || s.fired[ActionButton] {
		return false
	}
	s.fired[action] = true
	s.phase = PhaseRedirectFired
	if s.countdownTimer != nil {
		s.countdownTimer.Stop()
	}

	if event == "" {
		event = s.cfg.RedirectEvent
	}
	if s.sdkReady {
		s.deps.Pixel.Track(event, s.cfg.RedirectEventID)
	}
	if s.deps.Mirror != nil {
		req := MirrorRequest{PageID: s.cfg.PageID, EventName: event, EventID: s.cfg.RedirectEventID}
		mirror, logger := s.deps.Mirror, s.deps.Logger
		s.deps.Dispatch(func() {
			if err := mirror.Mirror(context.Background(), req); err != nil {
				logger.Warn("track_redirect_mirror_failed", "page_id", req.PageID, "event", req.EventName, "error", err)
			}
		})
	}

	s.navTimer = s.deps.Clock.AfterFunc(NavigationGrace, s.navigate)
	return true
}

func (s *Session) navigate() {
	s.mu.Lock()
	if s.phase != PhaseRedirectFired {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseNavigated
	if s.deps.Navigator != nil {
		s.deps.Navigator.Navigate(s.cfg.TargetURL)
	}
	s.mu.Unlock()

	s.render()
}

// Unmount clears every timer. Nothing fires afterwards.
func (s *Session) Unmount() {
	s.mu.Lock()
	s.phase = PhaseStopped
	for _, t := range []Timer{s.countdownTimer, s.navTimer} {
		if t != nil {
			t.Stop()
		}
	}
	vacancy, notifier := s.vacancy, s.notifier
	s.mu.Unlock()

	if vacancy != nil {
		vacancy.Stop()
	}
	if notifier != nil {
		notifier.Stop()
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{Phase: s.phase, Countdown: s.countdown}
	for k := range s.fired {
		snap.Fired = append(snap.Fired, k)
	}
	vacancy, notifier := s.vacancy, s.notifier
	s.mu.Unlock()

	sort.Strings(snap.Fired)
	if vacancy != nil {
		snap.Vacancy = vacancy.Count()
	} else {
		snap.Vacancy = s.cfg.VacancyCount
	}
	if notifier != nil {
		snap.Notification = notifier.Current()
	}
	return snap
}

func (s *Session) render() {
	if s.deps.OnRender != nil {
		s.deps.OnRender(s.Snapshot())
	}
}

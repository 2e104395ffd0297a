// Package tracker models the public pages' redirect and event pipeline as a
// single-threaded state machine with an injectable clock, so the same rules
// that run in the visitor's browser can be previewed and tested on the
// server.
package tracker

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending timeout or interval.
type Timer interface {
	// Stop reports whether the timer was still active.
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	// Every calls f every d until stopped. d must be positive.
	Every(d time.Duration, f func()) Timer
}

type realClock struct{}

// Real is the wall clock. Callbacks run on their own goroutines.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) Every(d time.Duration, f func()) Timer {
	t := &realInterval{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				f()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type realInterval struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *realInterval) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}

// ManualClock only moves when Advance is called. Due callbacks run
// synchronously inside Advance, in time order and then scheduling order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

type manualTimer struct {
	clock  *ManualClock
	at     time.Time
	period time.Duration
	seq    int
	f      func()
	active bool
}

func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	was := t.active
	t.active = false
	return was
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.schedule(d, 0, f)
}

func (c *ManualClock) Every(d time.Duration, f func()) Timer {
	if d <= 0 {
		panic("tracker: non-positive interval")
	}
	return c.schedule(d, d, f)
}

func (c *ManualClock) schedule(d, period time.Duration, f func()) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, at: c.now.Add(d), period: period, seq: c.seq, f: f, active: true}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing everything that comes due,
// including timers scheduled by the callbacks themselves.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		t := c.next(target)
		if t == nil {
			return
		}
		t.f()
	}
}

// next pops the earliest due timer, or sets the clock to target and returns
// nil when nothing is due.
func (c *ManualClock) next(target time.Time) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.timers[:0]
	for _, t := range c.timers {
		if t.active {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if !c.timers[i].at.Equal(c.timers[j].at) {
			return c.timers[i].at.Before(c.timers[j].at)
		}
		return c.timers[i].seq < c.timers[j].seq
	})

	if len(c.timers) == 0 || c.timers[0].at.After(target) {
		c.now = target
		return nil
	}
	t := c.timers[0]
	c.now = t.at
	if t.period > 0 {
		c.seq++
		t.at = t.at.Add(t.period)
		t.seq = c.seq
	} else {
		t.active = false
	}
	return t
}

// Pending is the number of active timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.active {
			n++
		}
	}
	return n
}

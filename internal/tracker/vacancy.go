package tracker

import (
	"sync"
	"time"
)

// VacancyCounter counts "spots left" down to zero and then stops. It fires
// no events and never navigates.
type VacancyCounter struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	count    int
	timer    Timer
	onTick   func(count int)
}

func NewVacancyCounter(clock Clock, start int, interval time.Duration, onTick func(int)) *VacancyCounter {
	if start < 0 {
		start = 0
	}
	return &VacancyCounter{clock: clock, interval: interval, count: start, onTick: onTick}
}

func (v *VacancyCounter) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil || v.count == 0 || v.interval <= 0 {
		return
	}
	v.timer = v.clock.Every(v.interval, v.tick)
}

func (v *VacancyCounter) tick() {
	v.mu.Lock()
	if v.count == 0 {
		v.mu.Unlock()
		return
	}
	v.count--
	count := v.count
	if count == 0 && v.timer != nil {
		v.timer.Stop()
	}
	onTick := v.onTick
	v.mu.Unlock()

	if onTick != nil {
		onTick(count)
	}
}

func (v *VacancyCounter) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Stop()
	}
}

func (v *VacancyCounter) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.count
}

package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP for the public and
// tracking routes.
type IPRateLimiter struct {
	ips    map[string]*visitorLimiter
	mu     sync.Mutex
	r      rate.Limit
	b      int
	logger *slog.Logger
	now    func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		ips:    make(map[string]*visitorLimiter),
		r:      r,
		b:      b,
		logger: logger,
		now:    time.Now,
	}
}

// StartCleanup forgets IPs idle for longer than idle, every interval, until
// ctx is done.
func (i *IPRateLimiter) StartCleanup(ctx context.Context, interval, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := i.evict(idle); n > 0 {
					i.logger.Debug("Cleaned up rate limiter map", "evicted", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (i *IPRateLimiter) evict(idle time.Duration) int {
	cutoff := i.now().Add(-idle)
	i.mu.Lock()
	defer i.mu.Unlock()
	n := 0
	for ip, v := range i.ips {
		if v.lastSeen.Before(cutoff) {
			delete(i.ips, ip)
			n++
		}
	}
	return n
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, exists := i.ips[ip]
	if !exists {
		v = &visitorLimiter{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = v
	}
	v.lastSeen = i.now()
	return v.limiter
}

func (i *IPRateLimiter) Allow(ip string) bool {
	return i.GetLimiter(ip).Allow()
}

package kvstore

import (
	"context"
	"encoding/json"
	"time"

	"pixelgate/internal/metrics"
)

type instrumented struct {
	next Store
}

// Instrumented wraps a backend with op counters and latency histograms.
func Instrumented(next Store) Store {
	return &instrumented{next: next}
}

func observe(op string, start time.Time, err error) {
	metrics.StoreOpsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
	metrics.StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *instrumented) ReadValue(ctx context.Context, key string, dst any) (bool, error) {
	start := time.Now()
	found, err := s.next.ReadValue(ctx, key, dst)
	observe("read_value", start, err)
	return found, err
}

func (s *instrumented) ReadValues(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	start := time.Now()
	out, err := s.next.ReadValues(ctx, keys)
	observe("read_values", start, err)
	return out, err
}

func (s *instrumented) UpsertItems(ctx context.Context, items []Item) error {
	start := time.Now()
	err := s.next.UpsertItems(ctx, items)
	observe("upsert_items", start, err)
	return err
}

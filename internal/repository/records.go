package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"pixelgate/internal/kvstore"
)

// records reads per-record keys "<prefix><id>" in index order.
type records[R any] struct {
	store  kvstore.Store
	prefix string
	// decode turns stored JSON into the current record shape.
	decode func(raw json.RawMessage) (R, error)
}

func (r records[R]) key(id string) string {
	return r.prefix + id
}

// list bulk-reads ids. Ids whose record is missing are skipped.
func (r records[R]) list(ctx context.Context, ids []string) ([]R, error) {
	out := make([]R, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	raw, err := r.store.ReadValues(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("read %s records: %w", r.prefix, err)
	}
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		rec, err := r.decode(v)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// get returns ErrNotFound when the record key is missing.
func (r records[R]) get(ctx context.Context, id string) (*R, error) {
	var raw json.RawMessage
	found, err := r.store.ReadValue(ctx, r.key(id), &raw)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.key(id), err)
	}
	if !found {
		return nil, ErrNotFound
	}
	rec, err := r.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key(id), err)
	}
	return &rec, nil
}

func decodeJSON[R any](raw json.RawMessage) (R, error) {
	var rec R
	err := json.Unmarshal(raw, &rec)
	return rec, err
}

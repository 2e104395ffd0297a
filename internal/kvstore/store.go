// Package kvstore is the adapter over the small key-value config service
// that holds every admin-authored record.
//
// The contract is deliberately narrow: read one key, bulk-read several keys,
// and apply a batch of upserts/deletes. Reads may lag writes briefly (the
// hosted backend is eventually consistent) and there is no compare-and-swap,
// so concurrent read-modify-write cycles on the same key are last-write-wins.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// Item is one entry in a write batch. An empty Operation means upsert.
type Item struct {
	Key       string
	Value     any
	Operation Operation
}

func (i Item) op() Operation {
	if i.Operation == "" {
		return OpUpsert
	}
	return i.Operation
}

type Store interface {
	// ReadValue decodes the JSON value stored under key into dst. found is
	// false when the key does not exist; dst is untouched in that case.
	ReadValue(ctx context.Context, key string, dst any) (found bool, err error)
	// ReadValues returns the raw JSON of every key that exists. Missing keys
	// are absent from the map.
	ReadValues(ctx context.Context, keys []string) (map[string]json.RawMessage, error)
	// UpsertItems applies the batch as a unit from the caller's perspective.
	UpsertItems(ctx context.Context, items []Item) error
}

var ErrNotConfigured = errors.New("config store not configured")

// StatusError is returned when the hosted backend answers with a non-2xx.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
	Payload    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("config store %s failed: %d %s", e.Op, e.StatusCode, e.Body)
	if e.Payload != "" {
		msg += " | payload=" + e.Payload
	}
	return msg
}

// encodeItems marshals every upsert value up front so a bad value fails the
// whole batch before anything is sent.
func encodeItems(items []Item) ([][]byte, error) {
	encoded := make([][]byte, len(items))
	for i, item := range items {
		if item.Key == "" {
			return nil, errors.New("config store item without key")
		}
		switch item.op() {
		case OpUpsert:
			raw, err := json.Marshal(item.Value)
			if err != nil {
				return nil, fmt.Errorf("encode %q: %w", item.Key, err)
			}
			encoded[i] = raw
		case OpDelete:
		default:
			return nil, fmt.Errorf("unknown operation %q for %q", item.Operation, item.Key)
		}
	}
	return encoded, nil
}

func decodeInto(key string, raw []byte, dst any) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

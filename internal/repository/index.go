// Package repository stores admin-authored records in the config store.
//
// Each entity type owns one index key holding an ordered list of small
// entries, plus one key per record. Index writes are read-modify-write with
// no compare-and-swap: two writers that load the same index and each write
// back their own change lose one of them. With a single operator this is an
// accepted limit, and TestIndex_LostUpdate pins it down.
package repository

import (
	"context"
	"fmt"

	"pixelgate/internal/kvstore"
)

// Entry is one element of an index list.
type Entry interface {
	EntryID() string
}

// SlugEntry is an index element that also owns a public slug.
type SlugEntry interface {
	Entry
	EntrySlug() string
}

// Index is the list stored under one fixed key.
type Index[E Entry] struct {
	store kvstore.Store
	key   string
}

func NewIndex[E Entry](store kvstore.Store, key string) Index[E] {
	return Index[E]{store: store, key: key}
}

func (ix Index[E]) Key() string {
	return ix.key
}

// Load returns the stored entries, or an empty list when the key is missing.
func (ix Index[E]) Load(ctx context.Context) (Entries[E], error) {
	var entries Entries[E]
	if _, err := ix.store.ReadValue(ctx, ix.key, &entries); err != nil {
		return nil, fmt.Errorf("read index %s: %w", ix.key, err)
	}
	if entries == nil {
		entries = Entries[E]{}
	}
	return entries, nil
}

// Item is the write that replaces the stored list with entries.
func (ix Index[E]) Item(entries Entries[E]) kvstore.Item {
	if entries == nil {
		entries = Entries[E]{}
	}
	return kvstore.Item{Key: ix.key, Value: entries}
}

type Entries[E Entry] []E

// Find returns the entry with id and whether it exists.
func (es Entries[E]) Find(id string) (E, bool) {
	for _, e := range es {
		if e.EntryID() == id {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// Remove returns the list without id and whether anything was removed.
func (es Entries[E]) Remove(id string) (Entries[E], bool) {
	out := make(Entries[E], 0, len(es))
	for _, e := range es {
		if e.EntryID() != id {
			out = append(out, e)
		}
	}
	return out, len(out) != len(es)
}

// Put drops any previous entry with the same id and appends e at the tail.
func (es Entries[E]) Put(e E) Entries[E] {
	out, _ := es.Remove(e.EntryID())
	return append(out, e)
}

func (es Entries[E]) IDs() []string {
	ids := make([]string, len(es))
	for i, e := range es {
		ids[i] = e.EntryID()
	}
	return ids
}

// FindBySlug is a linear scan; indexes are small.
func FindBySlug[E SlugEntry](es Entries[E], slug string) (E, bool) {
	for _, e := range es {
		if e.EntrySlug() == slug {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// TakenSlugs lists the slugs of every entry except exceptID.
func TakenSlugs[E SlugEntry](es Entries[E], exceptID string) map[string]struct{} {
	taken := make(map[string]struct{}, len(es))
	for _, e := range es {
		if e.EntryID() != exceptID {
			taken[e.EntrySlug()] = struct{}{}
		}
	}
	return taken
}

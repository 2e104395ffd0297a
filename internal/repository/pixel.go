package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pixelgate/internal/kvstore"
	"pixelgate/internal/models"
	"pixelgate/internal/validation"
	"pixelgate/pkg/utils"
)

const (
	PixelIndexKey     = "pixels_index"
	pixelRecordPrefix = "pixels_"
)

type pixelEntry struct {
	ID            string             `json:"id"`
	Label         string             `json:"label"`
	PixelID       string             `json:"pixelId"`
	DefaultEvents []models.MetaEvent `json:"defaultEvents,omitempty"`
	IsDefault     bool               `json:"isDefault,omitempty"`
}

func (e pixelEntry) EntryID() string { return e.ID }

type PixelRepository struct {
	store   kvstore.Store
	index   Index[pixelEntry]
	records records[models.Pixel]
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewPixelRepository(store kvstore.Store, logger *slog.Logger) *PixelRepository {
	return &PixelRepository{
		store:   store,
		index:   NewIndex[pixelEntry](store, PixelIndexKey),
		records: records[models.Pixel]{store: store, prefix: pixelRecordPrefix, decode: decodeJSON[models.Pixel]},
		logger:  logger,
		now:     time.Now,
		newID:   utils.NewID,
	}
}

func (r *PixelRepository) List(ctx context.Context) ([]models.Pixel, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	pixels, err := r.records.list(ctx, entries.IDs())
	if err != nil {
		return nil, err
	}
	// The index owns the default flag; records of pixels that lost it are
	// not rewritten.
	for i := range pixels {
		if e, ok := entries.Find(pixels[i].ID); ok {
			pixels[i].IsDefault = e.IsDefault
		}
	}
	return pixels, nil
}

// GetByID resolves id through the index. It returns ErrNotFound when either
// the entry or the record is missing.
func (r *PixelRepository) GetByID(ctx context.Context, id string) (*models.Pixel, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := entries.Find(id)
	if !ok {
		return nil, ErrNotFound
	}
	pixel, err := r.records.get(ctx, id)
	if err != nil {
		return nil, err
	}
	pixel.IsDefault = entry.IsDefault
	return pixel, nil
}

// Default returns the flagged pixel, or the first one when none is flagged.
func (r *PixelRepository) Default(ctx context.Context) (*models.Pixel, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	entries = ensureDefault(entries)
	for _, e := range entries {
		if e.IsDefault {
			pixel, err := r.records.get(ctx, e.ID)
			if err != nil {
				return nil, err
			}
			pixel.IsDefault = true
			return pixel, nil
		}
	}
	return nil, ErrNotFound
}

func (r *PixelRepository) Upsert(ctx context.Context, in validation.PixelInput) (*models.Pixel, error) {
	if err := validation.Check(&in); err != nil {
		return nil, err
	}

	now := r.now().UTC()
	id := in.ID
	if id == "" {
		id = r.newID()
	}

	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := r.records.get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	events := in.DefaultEvents
	if len(events) == 0 {
		events = []models.MetaEvent{models.EventPageView}
	}

	record := models.Pixel{
		ID:            id,
		Label:         in.Label,
		PixelID:       in.PixelID,
		IsDefault:     in.IsDefault,
		DefaultEvents: events,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if existing != nil {
		record.CreatedAt = existing.CreatedAt
	}

	entries = entries.Put(pixelEntry{
		ID:            id,
		Label:         record.Label,
		PixelID:       record.PixelID,
		DefaultEvents: record.DefaultEvents,
		IsDefault:     record.IsDefault,
	})
	if record.IsDefault {
		entries = makeDefault(entries, id)
	}
	entries = ensureDefault(entries)

	// A promoted record must say so too, otherwise reading it back
	// disagrees with the index.
	if e, ok := entries.Find(id); ok {
		record.IsDefault = e.IsDefault
	}

	items := []kvstore.Item{
		{Key: r.records.key(id), Value: record},
		r.index.Item(entries),
	}
	if err := r.store.UpsertItems(ctx, items); err != nil {
		return nil, err
	}

	r.logger.Info("pixel_upsert", "id", id, "is_new", existing == nil, "is_default", record.IsDefault)
	return &record, nil
}

// Delete is idempotent. Removing the default promotes the next first entry.
func (r *PixelRepository) Delete(ctx context.Context, id string) error {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return err
	}
	remaining, removed := entries.Remove(id)
	if !removed {
		r.logger.Info("pixel_delete_not_found", "id", id)
		return nil
	}

	items := []kvstore.Item{
		{Key: r.records.key(id), Operation: kvstore.OpDelete},
		r.index.Item(ensureDefault(remaining)),
	}
	if err := r.store.UpsertItems(ctx, items); err != nil {
		return err
	}

	r.logger.Info("pixel_delete", "id", id)
	return nil
}

func makeDefault(entries Entries[pixelEntry], id string) Entries[pixelEntry] {
	out := make(Entries[pixelEntry], len(entries))
	for i, e := range entries {
		e.IsDefault = e.ID == id
		out[i] = e
	}
	return out
}

// ensureDefault promotes the first entry when no entry is flagged.
func ensureDefault(entries Entries[pixelEntry]) Entries[pixelEntry] {
	if len(entries) == 0 {
		return entries
	}
	for _, e := range entries {
		if e.IsDefault {
			return entries
		}
	}
	out := make(Entries[pixelEntry], len(entries))
	copy(out, entries)
	out[0].IsDefault = true
	return out
}

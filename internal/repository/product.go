package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pixelgate/internal/kvstore"
	"pixelgate/internal/models"
	"pixelgate/internal/validation"
	"pixelgate/pkg/utils"
)

const (
	ProductIndexKey     = "products_index"
	productRecordPrefix = "products_"
)

type productEntry struct {
	ID            string             `json:"id"`
	Slug          string             `json:"slug"`
	Title         string             `json:"title"`
	Status        models.Status      `json:"status"`
	PixelConfigID string             `json:"pixelConfigId"`
	Events        []models.MetaEvent `json:"events"`
}

func (e productEntry) EntryID() string   { return e.ID }
func (e productEntry) EntrySlug() string { return e.Slug }

// PixelLookup is the part of the pixel repository products depend on.
type PixelLookup interface {
	GetByID(ctx context.Context, id string) (*models.Pixel, error)
}

type ProductRepository struct {
	store   kvstore.Store
	index   Index[productEntry]
	records records[models.Product]
	pixels  PixelLookup
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewProductRepository(store kvstore.Store, pixels PixelLookup, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		store:   store,
		index:   NewIndex[productEntry](store, ProductIndexKey),
		records: records[models.Product]{store: store, prefix: productRecordPrefix, decode: decodeJSON[models.Product]},
		pixels:  pixels,
		logger:  logger,
		now:     time.Now,
		newID:   utils.NewID,
	}
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	return r.records.list(ctx, entries.IDs())
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := entries.Find(id); !ok {
		return nil, ErrNotFound
	}
	return r.records.get(ctx, id)
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := FindBySlug(entries, slug)
	if !ok {
		return nil, ErrNotFound
	}
	return r.records.get(ctx, entry.ID)
}

func (r *ProductRepository) Upsert(ctx context.Context, in validation.ProductInput) (*models.Product, error) {
	if err := validation.Check(&in); err != nil {
		return nil, err
	}

	if in.Status == models.StatusActive && r.pixels != nil {
		if _, err := r.pixels.GetByID(ctx, in.PixelConfigID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrPixelNotFound, in.PixelConfigID)
			}
			return nil, err
		}
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

	record := models.Product{
		ID:            id,
		Title:         in.Title,
		AffiliateURL:  in.AffiliateURL,
		PixelConfigID: in.PixelConfigID,
		Events:        in.Events,
		Status:        in.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if existing != nil {
		record.Slug = existing.Slug
		record.CreatedAt = existing.CreatedAt
	} else {
		record.Slug = UniqueSlug(Slugify(in.Title, "link"), TakenSlugs(entries, id))
	}

	entries = entries.Put(productEntry{
		ID:            id,
		Slug:          record.Slug,
		Title:         record.Title,
		Status:        record.Status,
		PixelConfigID: record.PixelConfigID,
		Events:        record.Events,
	})

	items := []kvstore.Item{
		{Key: r.records.key(id), Value: record},
		r.index.Item(entries),
	}
	if err := r.store.UpsertItems(ctx, items); err != nil {
		return nil, err
	}

	r.logger.Info("product_upsert", "id", id, "slug", record.Slug, "is_new", existing == nil)
	return &record, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return err
	}
	remaining, removed := entries.Remove(id)
	if !removed {
		r.logger.Info("product_delete_not_found", "id", id)
		return nil
	}

	items := []kvstore.Item{
		{Key: r.records.key(id), Operation: kvstore.OpDelete},
		r.index.Item(remaining),
	}
	if err := r.store.UpsertItems(ctx, items); err != nil {
		return err
	}

	r.logger.Info("product_delete", "id", id)
	return nil
}

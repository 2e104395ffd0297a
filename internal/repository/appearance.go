package repository

import (
	"context"
	"log/slog"
	"time"

	"pixelgate/internal/kvstore"
	"pixelgate/internal/models"
	"pixelgate/internal/validation"
)

const AppearanceKey = "whatsapp_appearance"

// AppearanceRepository holds the single global appearance record.
type AppearanceRepository struct {
	store  kvstore.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewAppearanceRepository(store kvstore.Store, logger *slog.Logger) *AppearanceRepository {
	return &AppearanceRepository{store: store, logger: logger, now: time.Now}
}

// Get never reports not found; a missing record reads as the defaults.
func (r *AppearanceRepository) Get(ctx context.Context) (models.Appearance, error) {
	var a models.Appearance
	found, err := r.store.ReadValue(ctx, AppearanceKey, &a)
	if err != nil {
		return models.Appearance{}, err
	}
	if !found {
		return models.Appearance{RedirectText: models.DefaultRedirectText, UpdatedAt: r.now().UTC()}, nil
	}
	if a.RedirectText == "" {
		a.RedirectText = models.DefaultRedirectText
	}
	return a, nil
}

func (r *AppearanceRepository) Update(ctx context.Context, in validation.AppearanceInput) (models.Appearance, error) {
	if err := validation.Check(&in); err != nil {
		return models.Appearance{}, err
	}

	a := models.Appearance{
		RedirectText:    in.RedirectText,
		BackgroundColor: in.BackgroundColor,
		BorderEnabled:   in.BorderEnabled,
		UpdatedAt:       r.now().UTC(),
	}
	if err := r.store.UpsertItems(ctx, []kvstore.Item{{Key: AppearanceKey, Value: a}}); err != nil {
		return models.Appearance{}, err
	}

	r.logger.Info("appearance_update", "border", a.BorderEnabled, "has_background", a.BackgroundColor != "")
	return a, nil
}

package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pixelgate/internal/kvstore"
	"pixelgate/internal/models"
	"pixelgate/internal/validation"
	"pixelgate/pkg/utils"
)

const (
	WhatsAppIndexKey     = "whatsapp_pages_index"
	whatsAppRecordPrefix = "whatsapp_pages_"
)

type whatsAppEntry struct {
	ID       string        `json:"id"`
	Slug     string        `json:"slug"`
	Headline string        `json:"headline"`
	Status   models.Status `json:"status"`
}

func (e whatsAppEntry) EntryID() string   { return e.ID }
func (e whatsAppEntry) EntrySlug() string { return e.Slug }

type WhatsAppRepository struct {
	store   kvstore.Store
	index   Index[whatsAppEntry]
	records records[models.WhatsAppPage]
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewWhatsAppRepository(store kvstore.Store, logger *slog.Logger) *WhatsAppRepository {
	return &WhatsAppRepository{
		store:   store,
		index:   NewIndex[whatsAppEntry](store, WhatsAppIndexKey),
		records: records[models.WhatsAppPage]{store: store, prefix: whatsAppRecordPrefix, decode: migrateWhatsAppPage},
		logger:  logger,
		now:     time.Now,
		newID:   utils.NewID,
	}
}

func (r *WhatsAppRepository) List(ctx context.Context) ([]models.WhatsAppPage, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	return r.records.list(ctx, entries.IDs())
}

func (r *WhatsAppRepository) GetByID(ctx context.Context, id string) (*models.WhatsAppPage, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := entries.Find(id); !ok {
		return nil, ErrNotFound
	}
	return r.records.get(ctx, id)
}

func (r *WhatsAppRepository) GetBySlug(ctx context.Context, slug string) (*models.WhatsAppPage, error) {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := FindBySlug(entries, slug)
	if !ok {
		return nil, ErrNotFound
	}
	page, err := r.records.get(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("whatsapp_page_read", "slug", slug, "id", page.ID, "mode", page.RedirectMode)
	return page, nil
}

// Upsert merges in over the stored page. Optional fields left out of in keep
// their stored value, or take the default on a new page.
func (r *WhatsAppRepository) Upsert(ctx context.Context, in validation.WhatsAppPageInput) (*models.WhatsAppPage, error) {
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

	page := newWhatsAppPage()
	page.CreatedAt = now
	if existing != nil {
		page = *existing
	} else {
		page.Slug = UniqueSlug(Slugify(in.Headline, "page"), TakenSlugs(entries, id))
	}
	page.ID = id
	page.UpdatedAt = now
	applyWhatsAppInput(&page, in, existing != nil)

	entries = entries.Put(whatsAppEntry{
		ID:       id,
		Slug:     page.Slug,
		Headline: page.Headline,
		Status:   page.Status,
	})

	items := []kvstore.Item{
		{Key: r.records.key(id), Value: page},
		r.index.Item(entries),
	}
	if err := r.store.UpsertItems(ctx, items); err != nil {
		return nil, err
	}

	r.logger.Info("whatsapp_page_upsert", "id", id, "slug", page.Slug, "is_new", existing == nil, "mode", page.RedirectMode)
	return &page, nil
}

func (r *WhatsAppRepository) Delete(ctx context.Context, id string) error {
	entries, err := r.index.Load(ctx)
	if err != nil {
		return err
	}
	remaining, removed := entries.Remove(id)
	if !removed {
		r.logger.Info("whatsapp_page_delete_not_found", "id", id)
		return nil
	}

	items := []kvstore.Item{
		{Key: r.records.key(id), Operation: kvstore.OpDelete},
		r.index.Item(remaining),
	}
	if err := r.store.UpsertItems(ctx, items); err != nil {
		return err
	}

	r.logger.Info("whatsapp_page_delete", "id", id)
	return nil
}

// applyWhatsAppInput writes in over page, which already holds either the
// stored page or the defaults.
func applyWhatsAppInput(page *models.WhatsAppPage, in validation.WhatsAppPageInput, hadRecord bool) {
	page.Headline = in.Headline
	page.ButtonText = in.ButtonText
	page.WhatsAppURL = in.WhatsAppURL
	page.PixelConfigID = in.PixelConfigID
	page.Events = in.Events
	page.RedirectEvent = in.RedirectEvent
	page.Status = in.Status

	// nil keeps, "" clears, anything else sets.
	if in.HeaderImageURL != nil {
		page.HeaderImageURL = *in.HeaderImageURL
	}
	if in.GroupImageURL != nil {
		page.GroupImageURL = *in.GroupImageURL
	}

	if in.SocialProofs != nil {
		page.SocialProofs = in.SocialProofs
	}
	page.ButtonSize = deref(in.ButtonSize, page.ButtonSize)
	page.ButtonEvent = deref(in.ButtonEvent, page.ButtonEvent)
	page.RedirectDelay = deref(in.RedirectDelay, page.RedirectDelay)

	page.SetMode(resolveMode(in, *page, hadRecord))

	if cards := in.Cards(); cards != nil {
		page.BenefitCards = cards
	}
	page.EmojiSize = deref(in.EmojiSize, page.EmojiSize)
	page.SocialProofEnabled = deref(in.SocialProofEnabled, page.SocialProofEnabled)
	page.SocialProofInterval = deref(in.SocialProofInterval, page.SocialProofInterval)

	v := &page.VacancySettings
	v.VacancyHeadline = deref(in.VacancyHeadline, v.VacancyHeadline)
	v.VacancyCount = deref(in.VacancyCount, v.VacancyCount)
	v.VacancyFooter = nullable(in.VacancyFooter, v.VacancyFooter)
	v.VacancyBackgroundColor = nullable(in.VacancyBackgroundColor, v.VacancyBackgroundColor)
	v.VacancyCountFontSize = deref(in.VacancyCountFontSize, v.VacancyCountFontSize)
	v.VacancyHeadlineFontSize = deref(in.VacancyHeadlineFontSize, v.VacancyHeadlineFontSize)
	v.VacancyFooterFontSize = deref(in.VacancyFooterFontSize, v.VacancyFooterFontSize)
	v.VacancyDecrementInterval = deref(in.VacancyDecrementInterval, v.VacancyDecrementInterval)
	v.VacancyHeadlineColor = nullable(in.VacancyHeadlineColor, v.VacancyHeadlineColor)
	v.VacancyCountColor = nullable(in.VacancyCountColor, v.VacancyCountColor)
	v.VacancyFooterColor = nullable(in.VacancyFooterColor, v.VacancyFooterColor)

	if items := in.CarouselItems(); items != nil {
		page.SocialProofCarouselItems = items
	}
	page.CarouselAutoPlay = deref(in.CarouselAutoPlay, page.CarouselAutoPlay)
	page.CarouselInterval = deref(in.CarouselInterval, page.CarouselInterval)

	page.FooterText = nullable(in.FooterText, page.FooterText)
	page.SubheadlineFontSize = deref(in.SubheadlineFontSize, page.SubheadlineFontSize)
	if in.ParticipantCount != nil {
		page.ParticipantCount = in.ParticipantCount
	}
	page.FooterEnabled = deref(in.FooterEnabled, page.FooterEnabled)
}

// nullable keeps current when v is nil and clears on a blank string.
func nullable(v *string, current *string) *string {
	if v == nil {
		return current
	}
	if strings.TrimSpace(*v) == "" {
		return nil
	}
	s := *v
	return &s
}

// resolveMode picks the page mode. An explicit redirectMode wins. Turning one
// legacy flag on without mentioning the other turns the other off; flags left
// out keep the stored mode.
func resolveMode(in validation.WhatsAppPageInput, page models.WhatsAppPage, hadRecord bool) models.RedirectMode {
	if in.RedirectMode != nil {
		return *in.RedirectMode
	}
	if in.RedirectEnabled == nil && in.VacancyCounterEnabled == nil {
		if hadRecord {
			return page.RedirectMode
		}
		return models.ModeAutoRedirect
	}

	redirectOn, vacancyOn := page.RedirectMode.Flags()
	if in.RedirectEnabled != nil {
		redirectOn = *in.RedirectEnabled
		if redirectOn && in.VacancyCounterEnabled == nil {
			vacancyOn = false
		}
	}
	if in.VacancyCounterEnabled != nil {
		vacancyOn = *in.VacancyCounterEnabled
		if vacancyOn && in.RedirectEnabled == nil {
			redirectOn = false
		}
	}
	return models.ModeFromFlags(redirectOn, vacancyOn)
}

package repository

import (
	"encoding/json"
	"time"

	"pixelgate/internal/models"
)

// WhatsApp page fields were added over time without a version tag. Stored
// records are decoded into storedWhatsAppPage, where every later field is
// optional, and filled to the current shape exactly once, here.

const (
	defaultRedirectDelay            = 5
	defaultSocialProofInterval      = 10
	defaultVacancyDecrementInterval = 10
	defaultCarouselInterval         = 5
)

type storedWhatsAppPage struct {
	ID             string             `json:"id"`
	Slug           string             `json:"slug"`
	Headline       string             `json:"headline"`
	HeaderImageURL string             `json:"headerImageUrl"`
	SocialProofs   []string           `json:"socialProofs"`
	ButtonText     string             `json:"buttonText"`
	ButtonSize     *models.FontSize   `json:"buttonSize"`
	WhatsAppURL    string             `json:"whatsappUrl"`
	PixelConfigID  string             `json:"pixelConfigId"`
	Events         []models.MetaEvent `json:"events"`
	RedirectEvent  models.MetaEvent   `json:"redirectEvent"`
	ButtonEvent    models.MetaEvent   `json:"buttonEvent"`
	RedirectDelay  *int               `json:"redirectDelay"`
	Status         models.Status      `json:"status"`

	RedirectMode          *models.RedirectMode `json:"redirectMode"`
	RedirectEnabled       *bool                `json:"redirectEnabled"`
	VacancyCounterEnabled *bool                `json:"vacancyCounterEnabled"`

	BenefitCards        []models.BenefitCard `json:"benefitCards"`
	EmojiSize           *models.FontSize     `json:"emojiSize"`
	SocialProofEnabled  *bool                `json:"socialProofEnabled"`
	SocialProofInterval *int                 `json:"socialProofInterval"`

	VacancyHeadline          *string          `json:"vacancyHeadline"`
	VacancyCount             *int             `json:"vacancyCount"`
	VacancyFooter            *string          `json:"vacancyFooter"`
	VacancyBackgroundColor   *string          `json:"vacancyBackgroundColor"`
	VacancyCountFontSize     *models.FontSize `json:"vacancyCountFontSize"`
	VacancyHeadlineFontSize  *models.FontSize `json:"vacancyHeadlineFontSize"`
	VacancyFooterFontSize    *models.FontSize `json:"vacancyFooterFontSize"`
	VacancyDecrementInterval *int             `json:"vacancyDecrementInterval"`
	VacancyHeadlineColor     *string          `json:"vacancyHeadlineColor"`
	VacancyCountColor        *string          `json:"vacancyCountColor"`
	VacancyFooterColor       *string          `json:"vacancyFooterColor"`

	SocialProofCarouselItems []models.SocialProofItem `json:"socialProofCarouselItems"`
	CarouselAutoPlay         *bool                    `json:"carouselAutoPlay"`
	CarouselInterval         *int                     `json:"carouselInterval"`

	FooterText          *string          `json:"footerText"`
	SubheadlineFontSize *models.FontSize `json:"subheadlineFontSize"`
	GroupImageURL       string           `json:"groupImageUrl"`
	ParticipantCount    *int             `json:"participantCount"`
	FooterEnabled       *bool            `json:"footerEnabled"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// newWhatsAppPage is a page with every optional field at its default.
func newWhatsAppPage() models.WhatsAppPage {
	p := models.WhatsAppPage{
		SocialProofs:        []string{},
		ButtonSize:          models.FontMedium,
		RedirectDelay:       defaultRedirectDelay,
		BenefitCards:        []models.BenefitCard{},
		EmojiSize:           models.FontMedium,
		SocialProofInterval: defaultSocialProofInterval,
		VacancySettings: models.VacancySettings{
			VacancyCountFontSize:     models.FontLarge,
			VacancyHeadlineFontSize:  models.FontMedium,
			VacancyFooterFontSize:    models.FontSmall,
			VacancyDecrementInterval: defaultVacancyDecrementInterval,
		},
		SocialProofCarouselItems: []models.SocialProofItem{},
		CarouselInterval:         defaultCarouselInterval,
		SubheadlineFontSize:      models.FontMedium,
	}
	p.SetMode(models.ModeAutoRedirect)
	return p
}

func deref[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// migrateWhatsAppPage decodes a stored page of any age into the current shape.
func migrateWhatsAppPage(raw json.RawMessage) (models.WhatsAppPage, error) {
	var s storedWhatsAppPage
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.WhatsAppPage{}, err
	}

	p := newWhatsAppPage()
	p.ID = s.ID
	p.Slug = s.Slug
	p.Headline = s.Headline
	p.HeaderImageURL = s.HeaderImageURL
	if s.SocialProofs != nil {
		p.SocialProofs = s.SocialProofs
	}
	p.ButtonText = s.ButtonText
	p.ButtonSize = deref(s.ButtonSize, p.ButtonSize)
	p.WhatsAppURL = s.WhatsAppURL
	p.PixelConfigID = s.PixelConfigID
	p.Status = s.Status
	p.RedirectDelay = deref(s.RedirectDelay, p.RedirectDelay)

	// The first version had a single buttonEvent for load and redirect.
	p.Events = s.Events
	p.RedirectEvent = s.RedirectEvent
	p.ButtonEvent = s.ButtonEvent
	if s.ButtonEvent != "" {
		if p.Events == nil {
			p.Events = []models.MetaEvent{s.ButtonEvent}
		}
		if p.RedirectEvent == "" {
			p.RedirectEvent = s.ButtonEvent
		}
	}
	if p.Events == nil {
		p.Events = []models.MetaEvent{}
	}

	switch {
	case s.RedirectMode != nil && s.RedirectMode.Valid():
		p.SetMode(*s.RedirectMode)
	default:
		p.SetMode(models.ModeFromFlags(deref(s.RedirectEnabled, true), deref(s.VacancyCounterEnabled, false)))
	}

	if s.BenefitCards != nil {
		p.BenefitCards = s.BenefitCards
	}
	p.EmojiSize = deref(s.EmojiSize, p.EmojiSize)
	p.SocialProofEnabled = deref(s.SocialProofEnabled, false)
	p.SocialProofInterval = deref(s.SocialProofInterval, p.SocialProofInterval)

	v := &p.VacancySettings
	v.VacancyHeadline = deref(s.VacancyHeadline, "")
	v.VacancyCount = deref(s.VacancyCount, 0)
	v.VacancyFooter = s.VacancyFooter
	v.VacancyBackgroundColor = s.VacancyBackgroundColor
	v.VacancyCountFontSize = deref(s.VacancyCountFontSize, v.VacancyCountFontSize)
	v.VacancyHeadlineFontSize = deref(s.VacancyHeadlineFontSize, v.VacancyHeadlineFontSize)
	v.VacancyFooterFontSize = deref(s.VacancyFooterFontSize, v.VacancyFooterFontSize)
	v.VacancyDecrementInterval = deref(s.VacancyDecrementInterval, v.VacancyDecrementInterval)
	v.VacancyHeadlineColor = s.VacancyHeadlineColor
	v.VacancyCountColor = s.VacancyCountColor
	v.VacancyFooterColor = s.VacancyFooterColor

	if s.SocialProofCarouselItems != nil {
		p.SocialProofCarouselItems = s.SocialProofCarouselItems
	}
	p.CarouselAutoPlay = deref(s.CarouselAutoPlay, false)
	p.CarouselInterval = deref(s.CarouselInterval, p.CarouselInterval)

	p.FooterText = s.FooterText
	p.SubheadlineFontSize = deref(s.SubheadlineFontSize, p.SubheadlineFontSize)
	p.GroupImageURL = s.GroupImageURL
	p.ParticipantCount = s.ParticipantCount
	p.FooterEnabled = deref(s.FooterEnabled, false)

	p.CreatedAt = s.CreatedAt
	p.UpdatedAt = s.UpdatedAt
	return p, nil
}

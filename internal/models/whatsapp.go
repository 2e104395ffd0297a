package models

import "time"

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

func (f FontSize) Valid() bool {
	return f == FontSmall || f == FontMedium || f == FontLarge
}

// RedirectMode decides what the page does after load. It replaces the pair
// of booleans redirectEnabled/vacancyCounterEnabled, which could both be true.
type RedirectMode string

const (
	ModeAutoRedirect   RedirectMode = "auto_redirect"
	ModeVacancyCounter RedirectMode = "vacancy_counter"
	ModeManualOnly     RedirectMode = "manual_only"
)

func (m RedirectMode) Valid() bool {
	return m == ModeAutoRedirect || m == ModeVacancyCounter || m == ModeManualOnly
}

// ModeFromFlags maps the legacy booleans onto a mode. Both true resolves to
// auto redirect, since that is what such pages did at runtime.
func ModeFromFlags(redirectEnabled, vacancyEnabled bool) RedirectMode {
	switch {
	case redirectEnabled:
		return ModeAutoRedirect
	case vacancyEnabled:
		return ModeVacancyCounter
	default:
		return ModeManualOnly
	}
}

// Flags returns the legacy booleans derived from the mode.
func (m RedirectMode) Flags() (redirectEnabled, vacancyEnabled bool) {
	return m == ModeAutoRedirect, m == ModeVacancyCounter
}

type BenefitCard struct {
	Emoji       string `json:"emoji"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type SocialProofKind string

const (
	SocialProofText  SocialProofKind = "text"
	SocialProofImage SocialProofKind = "image"
)

// SocialProofItem is one carousel testimonial, discriminated by Type.
type SocialProofItem struct {
	ID          string          `json:"id,omitempty"`
	Type        SocialProofKind `json:"type"`
	Description string          `json:"description,omitempty"`
	Author      string          `json:"author,omitempty"`
	City        string          `json:"city,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// VacancySettings configures the "spots left" counter. Its fields are stored
// flat on the page record.
type VacancySettings struct {
	VacancyHeadline          string   `json:"vacancyHeadline"`
	VacancyCount             int      `json:"vacancyCount"`
	VacancyFooter            *string  `json:"vacancyFooter"`
	VacancyBackgroundColor   *string  `json:"vacancyBackgroundColor"`
	VacancyCountFontSize     FontSize `json:"vacancyCountFontSize"`
	VacancyHeadlineFontSize  FontSize `json:"vacancyHeadlineFontSize"`
	VacancyFooterFontSize    FontSize `json:"vacancyFooterFontSize"`
	VacancyDecrementInterval int      `json:"vacancyDecrementInterval"`
	VacancyHeadlineColor     *string  `json:"vacancyHeadlineColor"`
	VacancyCountColor        *string  `json:"vacancyCountColor"`
	VacancyFooterColor       *string  `json:"vacancyFooterColor"`
}

// WhatsAppPage is the current shape of a landing page served at /w/{slug}.
// Older stored records are filled up to this shape when read.
type WhatsAppPage struct {
	ID             string      `json:"id"`
	Slug           string      `json:"slug"`
	Headline       string      `json:"headline"`
	HeaderImageURL string      `json:"headerImageUrl,omitempty"`
	SocialProofs   []string    `json:"socialProofs"`
	ButtonText     string      `json:"buttonText"`
	ButtonSize     FontSize    `json:"buttonSize"`
	WhatsAppURL    string      `json:"whatsappUrl"`
	PixelConfigID  string      `json:"pixelConfigId,omitempty"`
	Events         []MetaEvent `json:"events"`
	RedirectEvent  MetaEvent   `json:"redirectEvent"`
	ButtonEvent    MetaEvent   `json:"buttonEvent,omitempty"`
	RedirectDelay  int         `json:"redirectDelay"`
	Status         Status      `json:"status"`

	RedirectMode RedirectMode `json:"redirectMode"`
	// Written alongside RedirectMode for readers that predate it.
	RedirectEnabled       bool `json:"redirectEnabled"`
	VacancyCounterEnabled bool `json:"vacancyCounterEnabled"`

	BenefitCards        []BenefitCard `json:"benefitCards"`
	EmojiSize           FontSize      `json:"emojiSize"`
	SocialProofEnabled  bool          `json:"socialProofEnabled"`
	SocialProofInterval int           `json:"socialProofInterval"`

	VacancySettings

	SocialProofCarouselItems []SocialProofItem `json:"socialProofCarouselItems"`
	CarouselAutoPlay         bool              `json:"carouselAutoPlay"`
	CarouselInterval         int               `json:"carouselInterval"`

	FooterText          *string  `json:"footerText"`
	SubheadlineFontSize FontSize `json:"subheadlineFontSize"`
	GroupImageURL       string   `json:"groupImageUrl,omitempty"`
	ParticipantCount    *int     `json:"participantCount,omitempty"`
	FooterEnabled       bool     `json:"footerEnabled"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetMode stores the mode and keeps the legacy flags consistent with it.
func (p *WhatsAppPage) SetMode(m RedirectMode) {
	p.RedirectMode = m
	p.RedirectEnabled, p.VacancyCounterEnabled = m.Flags()
}

// EffectiveButtonEvent is the event fired on a CTA click.
func (p WhatsAppPage) EffectiveButtonEvent() MetaEvent {
	if p.ButtonEvent != "" {
		return p.ButtonEvent
	}
	return p.RedirectEvent
}

func (p WhatsAppPage) IsActive() bool {
	return p.Status == StatusActive
}

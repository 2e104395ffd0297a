package validation

import (
	"strings"

	"pixelgate/internal/models"

	"github.com/go-playground/validator/v10"
)

type PixelInput struct {
	ID            string             `json:"id" validate:"omitempty,uuid"`
	Label         string             `json:"label" validate:"required,max=100"`
	PixelID       string             `json:"pixelId" validate:"required,pixel_id"`
	IsDefault     bool               `json:"isDefault"`
	DefaultEvents []models.MetaEvent `json:"defaultEvents" validate:"omitempty,dive,meta_event"`
}

func (in *PixelInput) normalize() {
	in.DefaultEvents = models.DedupeEvents(in.DefaultEvents)
}

func ParsePixel(raw []byte) (*PixelInput, error) {
	var in PixelInput
	if err := parse(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

type ProductInput struct {
	ID            string             `json:"id" validate:"omitempty,uuid"`
	Title         string             `json:"title" validate:"required,max=200"`
	AffiliateURL  string             `json:"affiliateUrl" validate:"required,affiliate_url"`
	PixelConfigID string             `json:"pixelConfigId"`
	Events        []models.MetaEvent `json:"events" validate:"min=1,dive,meta_event"`
	Status        models.Status      `json:"status" validate:"required,oneof=active inactive"`
}

func (in *ProductInput) normalize() {
	in.PixelConfigID = strings.TrimSpace(in.PixelConfigID)
	in.Events = models.DedupeEvents(in.Events)
}

func productStructLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(ProductInput)
	if in.Status == models.StatusActive && strings.TrimSpace(in.PixelConfigID) == "" {
		sl.ReportError(in.PixelConfigID, "pixelConfigId", "PixelConfigID", "active_pixel", "")
	}
}

func ParseProduct(raw []byte) (*ProductInput, error) {
	var in ProductInput
	if err := parse(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

type BenefitCardInput struct {
	Emoji       string `json:"emoji" validate:"required,max=8"`
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description" validate:"max=150"`
}

type SocialProofItemInput struct {
	ID          string                 `json:"id" validate:"max=64"`
	Type        models.SocialProofKind `json:"type" validate:"required,oneof=text image"`
	Description string                 `json:"description" validate:"max=300"`
	Author      string                 `json:"author" validate:"max=60"`
	City        string                 `json:"city" validate:"max=60"`
	ImageURL    string                 `json:"imageUrl" validate:"max=2048"`
}

func socialProofItemStructLevel(sl validator.StructLevel) {
	item := sl.Current().Interface().(SocialProofItemInput)
	switch item.Type {
	case models.SocialProofText:
		if strings.TrimSpace(item.Description) == "" {
			sl.ReportError(item.Description, "description", "Description", "text_item", "")
		}
		if strings.TrimSpace(item.Author) == "" {
			sl.ReportError(item.Author, "author", "Author", "text_item", "")
		}
	case models.SocialProofImage:
		if _, ok := parseHTTPS(item.ImageURL); !ok {
			sl.ReportError(item.ImageURL, "imageUrl", "ImageURL", "image_item", "")
		}
	}
}

// WhatsAppPageInput is what the admin console posts. Pointer fields are
// optional: nil means "keep what is stored, or the default".
type WhatsAppPageInput struct {
	ID             string             `json:"id" validate:"omitempty,uuid"`
	Headline       string             `json:"headline" validate:"required,max=200"`
	HeaderImageURL *string            `json:"headerImageUrl" validate:"omitempty,https_url,max=2048"`
	SocialProofs   []string           `json:"socialProofs" validate:"max=10,dive,max=200"`
	ButtonText     string             `json:"buttonText" validate:"required,max=100"`
	ButtonSize     *models.FontSize   `json:"buttonSize" validate:"omitempty,font_size"`
	WhatsAppURL    string             `json:"whatsappUrl" validate:"required,whatsapp_url"`
	PixelConfigID  string             `json:"pixelConfigId"`
	Events         []models.MetaEvent `json:"events" validate:"min=1,dive,meta_event"`
	RedirectEvent  models.MetaEvent   `json:"redirectEvent" validate:"required,meta_event"`
	ButtonEvent    *models.MetaEvent  `json:"buttonEvent" validate:"omitempty,meta_event"`
	RedirectDelay  *int               `json:"redirectDelay" validate:"omitempty,min=1,max=30"`
	Status         models.Status      `json:"status" validate:"required,oneof=active inactive"`

	RedirectMode          *models.RedirectMode `json:"redirectMode" validate:"omitempty,redirect_mode"`
	RedirectEnabled       *bool                `json:"redirectEnabled"`
	VacancyCounterEnabled *bool                `json:"vacancyCounterEnabled"`

	BenefitCards        []BenefitCardInput `json:"benefitCards" validate:"max=8,dive"`
	EmojiSize           *models.FontSize   `json:"emojiSize" validate:"omitempty,font_size"`
	SocialProofEnabled  *bool              `json:"socialProofEnabled"`
	SocialProofInterval *int               `json:"socialProofInterval" validate:"omitempty,min=5,max=60"`

	VacancyHeadline          *string          `json:"vacancyHeadline" validate:"omitempty,max=100"`
	VacancyCount             *int             `json:"vacancyCount" validate:"omitempty,min=0,max=9999"`
	VacancyFooter            *string          `json:"vacancyFooter" validate:"omitempty,max=100"`
	VacancyBackgroundColor   *string          `json:"vacancyBackgroundColor" validate:"omitempty,color"`
	VacancyCountFontSize     *models.FontSize `json:"vacancyCountFontSize" validate:"omitempty,font_size"`
	VacancyHeadlineFontSize  *models.FontSize `json:"vacancyHeadlineFontSize" validate:"omitempty,font_size"`
	VacancyFooterFontSize    *models.FontSize `json:"vacancyFooterFontSize" validate:"omitempty,font_size"`
	VacancyDecrementInterval *int             `json:"vacancyDecrementInterval" validate:"omitempty,min=1,max=60"`
	VacancyHeadlineColor     *string          `json:"vacancyHeadlineColor" validate:"omitempty,color"`
	VacancyCountColor        *string          `json:"vacancyCountColor" validate:"omitempty,color"`
	VacancyFooterColor       *string          `json:"vacancyFooterColor" validate:"omitempty,color"`

	SocialProofCarouselItems []SocialProofItemInput `json:"socialProofCarouselItems" validate:"max=10,dive"`
	CarouselAutoPlay         *bool                  `json:"carouselAutoPlay"`
	CarouselInterval         *int                   `json:"carouselInterval" validate:"omitempty,min=3,max=30"`

	FooterText          *string          `json:"footerText" validate:"omitempty,max=200"`
	SubheadlineFontSize *models.FontSize `json:"subheadlineFontSize" validate:"omitempty,font_size"`
	GroupImageURL       *string          `json:"groupImageUrl" validate:"omitempty,max=2048,image_url"`
	ParticipantCount    *int             `json:"participantCount" validate:"omitempty,min=0,max=999999"`
	FooterEnabled       *bool            `json:"footerEnabled"`
}

func (in *WhatsAppPageInput) normalize() {
	in.PixelConfigID = strings.TrimSpace(in.PixelConfigID)
	in.Events = models.DedupeEvents(in.Events)
	if in.HeaderImageURL != nil {
		trimmed := strings.TrimSpace(*in.HeaderImageURL)
		in.HeaderImageURL = &trimmed
	}
	if in.GroupImageURL != nil {
		trimmed := strings.TrimSpace(*in.GroupImageURL)
		in.GroupImageURL = &trimmed
	}
}

func whatsAppStructLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(WhatsAppPageInput)

	redirectOn := in.RedirectEnabled != nil && *in.RedirectEnabled
	vacancyOn := in.VacancyCounterEnabled != nil && *in.VacancyCounterEnabled
	if redirectOn && vacancyOn {
		sl.ReportError(in.VacancyCounterEnabled, "vacancyCounterEnabled", "VacancyCounterEnabled", "exclusive_mode", "")
	}

	if in.RedirectMode != nil && in.RedirectMode.Valid() {
		wantRedirect, wantVacancy := in.RedirectMode.Flags()
		if (in.RedirectEnabled != nil && *in.RedirectEnabled != wantRedirect) ||
			(in.VacancyCounterEnabled != nil && *in.VacancyCounterEnabled != wantVacancy) {
			sl.ReportError(in.RedirectMode, "redirectMode", "RedirectMode", "mode_conflict", "")
		}
	}
}

func ParseWhatsAppPage(raw []byte) (*WhatsAppPageInput, error) {
	var in WhatsAppPageInput
	if err := parse(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// Cards converts the validated cards, or returns nil when none were sent.
func (in WhatsAppPageInput) Cards() []models.BenefitCard {
	if in.BenefitCards == nil {
		return nil
	}
	out := make([]models.BenefitCard, len(in.BenefitCards))
	for i, c := range in.BenefitCards {
		out[i] = models.BenefitCard{Emoji: c.Emoji, Title: c.Title, Description: c.Description}
	}
	return out
}

// CarouselItems converts the validated carousel, or returns nil when none
// was sent.
func (in WhatsAppPageInput) CarouselItems() []models.SocialProofItem {
	if in.SocialProofCarouselItems == nil {
		return nil
	}
	out := make([]models.SocialProofItem, len(in.SocialProofCarouselItems))
	for i, it := range in.SocialProofCarouselItems {
		out[i] = models.SocialProofItem{
			ID:          it.ID,
			Type:        it.Type,
			Description: it.Description,
			Author:      it.Author,
			City:        it.City,
			ImageURL:    it.ImageURL,
		}
	}
	return out
}

type AppearanceInput struct {
	RedirectText    string `json:"redirectText" validate:"required,max=100"`
	BackgroundColor string `json:"backgroundColor" validate:"color"`
	BorderEnabled   bool   `json:"borderEnabled"`
}

func (in *AppearanceInput) normalize() {
	in.BackgroundColor = strings.TrimSpace(in.BackgroundColor)
}

func ParseAppearance(raw []byte) (*AppearanceInput, error) {
	var in AppearanceInput
	if err := parse(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// TrackRedirectInput is the browser's server-side mirror request.
type TrackRedirectInput struct {
	PageID    string           `json:"pageId" validate:"required,uuid"`
	EventName models.MetaEvent `json:"eventName" validate:"required,meta_event"`
	EventID   string           `json:"eventId" validate:"required,max=128"`
}

func (in *TrackRedirectInput) normalize() {}

func ParseTrackRedirect(raw []byte) (*TrackRedirectInput, error) {
	var in TrackRedirectInput
	if err := parse(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

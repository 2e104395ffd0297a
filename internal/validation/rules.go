package validation

import (
	"net/url"
	"regexp"
	"strings"

	"pixelgate/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	pixelIDPattern  = regexp.MustCompile(`^[0-9]{10,20}$`)
	imageURLPattern = regexp.MustCompile(`(?i)^https://.+\.(jpg|jpeg|png|gif|webp)(\?.*)?$`)
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Affiliate hosts match by substring, so regional domains like
// amazon.com.br and pt.aliexpress.com pass.
var affiliateHosts = []string{"shopee", "aliexpress", "mercadolivre", "amazon"}

var whatsAppHosts = []string{"chat.whatsapp.com", "wa.me"}

func parseHTTPS(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

func IsAllowedAffiliateURL(raw string) bool {
	u, ok := parseHTTPS(raw)
	if !ok {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range affiliateHosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}

func IsAllowedWhatsAppURL(raw string) bool {
	u, ok := parseHTTPS(raw)
	if !ok {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range whatsAppHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// The URL and color rules accept the empty string so optional fields can be
// cleared; pair them with "required" where a value is mandatory.
func setupCustomValidations(v *validator.Validate) {
	v.RegisterValidation("meta_event", func(fl validator.FieldLevel) bool {
		return models.MetaEvent(fl.Field().String()).Valid()
	})

	v.RegisterValidation("pixel_id", func(fl validator.FieldLevel) bool {
		return pixelIDPattern.MatchString(fl.Field().String())
	})

	v.RegisterValidation("affiliate_url", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || IsAllowedAffiliateURL(value)
	})

	v.RegisterValidation("whatsapp_url", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || IsAllowedWhatsAppURL(value)
	})

	v.RegisterValidation("https_url", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, ok := parseHTTPS(value)
		return ok
	})

	v.RegisterValidation("image_url", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		if _, ok := parseHTTPS(value); !ok {
			return false
		}
		return imageURLPattern.MatchString(value)
	})

	v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || hexColorPattern.MatchString(value)
	})

	v.RegisterValidation("font_size", func(fl validator.FieldLevel) bool {
		return models.FontSize(fl.Field().String()).Valid()
	})

	v.RegisterValidation("redirect_mode", func(fl validator.FieldLevel) bool {
		return models.RedirectMode(fl.Field().String()).Valid()
	})
}

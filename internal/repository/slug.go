package repository

import (
	"strconv"
	"strings"
	"unicode"

	"pixelgate/pkg/utils"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 48

// randomSuffix is swapped in tests to make fallback slugs predictable.
var randomSuffix = func() string { return utils.RandomBase36(4) }

// Slugify lower-cases text, strips diacritics, and joins the remaining
// alphanumeric runs with single hyphens. An empty result falls back to
// "<prefix>-xxxx".
func Slugify(text, fallbackPrefix string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(text)))
	if err != nil {
		stripped = strings.ToLower(text)
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return fallbackPrefix + "-" + randomSuffix()
	}
	return slug
}

// UniqueSlug returns base, or base-1, base-2, ... whichever is first free.
func UniqueSlug(base string, taken map[string]struct{}) string {
	if _, ok := taken[base]; !ok {
		return base
	}
	for attempt := 1; ; attempt++ {
		candidate := base + "-" + strconv.Itoa(attempt)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

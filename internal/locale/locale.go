package locale

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

const (
	Default    = "en"
	CookieName = "culture"
)

var (
	ErrCultureRequired    = errors.New("culture is required")
	ErrUnsupportedCulture = errors.New("unsupported culture")
)

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

// Supported lists the accepted culture names, default first.
func Supported() []string {
	names := make([]string, len(supported))
	for i, tag := range supported {
		names[i] = baseOf(tag)
	}
	return names
}

// Normalize parses a BCP 47 culture name and reduces it to a supported base
// language ("fr-FR" becomes "fr").
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrCultureRequired
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", ErrUnsupportedCulture
	}
	base := baseOf(tag)
	for _, s := range supported {
		if baseOf(s) == base {
			return base, nil
		}
	}
	return "", ErrUnsupportedCulture
}

// CookieValue renders the culture cookie payload.
func CookieValue(culture string) string {
	return "c=" + culture + "|uic=" + culture
}

// ParseCookie extracts a supported culture from a culture cookie, plain or
// URL-encoded ("c%3Dfr%7Cuic%3Dfr"). The UI culture wins over the
// formatting culture when both are present.
func ParseCookie(value string) (string, bool) {
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	var c, uic string
	for _, part := range strings.Split(value, "|") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "c":
			c = v
		case "uic":
			uic = v
		}
	}
	for _, candidate := range []string{uic, c} {
		if candidate == "" {
			continue
		}
		if culture, err := Normalize(candidate); err == nil {
			return culture, true
		}
	}
	return "", false
}

// FromAcceptLanguage picks the best supported culture from an
// Accept-Language header.
func FromAcceptLanguage(header string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	return baseOf(supported[idx]), true
}

// Resolve applies cookie > Accept-Language > default precedence. Unusable
// inputs fall through to the next source.
func Resolve(cookie, acceptLanguage string) string {
	if cookie != "" {
		if culture, ok := ParseCookie(cookie); ok {
			return culture
		}
	}
	if culture, ok := FromAcceptLanguage(acceptLanguage); ok {
		return culture
	}
	return Default
}

func baseOf(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

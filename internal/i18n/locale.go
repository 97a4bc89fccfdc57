// AngelaMos | 2026
// locale.go

package i18n

import (
	"context"
	"reflect"
	"strings"

	"golang.org/x/text/language"
)

const DefaultLocale = "en"

// Localized is implemented by records that carry a locale preference.
type Localized interface {
	PreferredLocale() string
}

// Resolver picks the effective locale: user, then team, then Default.
type Resolver struct {
	Default string
}

func NewResolver(defaultLocale string) Resolver {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	return Resolver{Default: defaultLocale}
}

func (r Resolver) Resolve(user, team Localized) string {
	for _, src := range []Localized{user, team} {
		if isNil(src) {
			continue
		}
		if loc := strings.TrimSpace(src.PreferredLocale()); loc != "" {
			return loc
		}
	}
	if r.Default == "" {
		return DefaultLocale
	}
	return r.Default
}

// Canonicalize normalizes a user-supplied tag ("pt_br" → "pt-BR"). Empty
// input stays empty.
func Canonicalize(tag string) (string, error) {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return "", nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

type localeKey struct{}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

func LocaleFromContext(ctx context.Context) string {
	if loc, ok := ctx.Value(localeKey{}).(string); ok && loc != "" {
		return loc
	}
	return DefaultLocale
}

// isNil catches typed nil pointers hiding inside an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

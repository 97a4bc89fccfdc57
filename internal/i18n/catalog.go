// AngelaMos | 2026
// catalog.go

package i18n

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Options is the option set of a single lookup.
type Options struct {
	// Scope prefixes keys that start with a dot, e.g. scope
	// "account.dashboard" + ".welcome_message".
	Scope   string
	Default *string
	Vars    map[string]string
	Count   *int
}

// Lookup is the underlying translation primitive. A key without a value and
// without a default yields a *MissingTranslationError.
type Lookup interface {
	Translate(locale, key string, opts Options) (string, error)
}

// Catalog is a Lookup over Rails-style YAML files whose top-level keys are
// locales:
//
//	en:
//	  account:
//	    dashboard:
//	      welcome_message: "Welcome to %{team_name}"
type Catalog struct {
	k             *koanf.Koanf
	defaultLocale string
	fallback      bool
}

func NewCatalog(defaultLocale string, fallback bool) *Catalog {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	return &Catalog{
		k:             koanf.New("."),
		defaultLocale: defaultLocale,
		fallback:      fallback,
	}
}

// LoadCatalog reads every *.yml and *.yaml file in dir.
func LoadCatalog(dir, defaultLocale string, fallback bool) (*Catalog, error) {
	c := NewCatalog(defaultLocale, fallback)

	var paths []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob locales: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := c.LoadFile(p); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Catalog) LoadFile(path string) error {
	if err := c.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load locale file %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

func (c *Catalog) Locales() []string {
	locales := c.k.MapKeys("")
	sort.Strings(locales)
	return locales
}

// Keys lists every leaf key defined for locale, without the locale prefix.
func (c *Catalog) Keys(locale string) []string {
	keys := c.k.Cut(locale).Keys()
	sort.Strings(keys)
	return keys
}

// Verify fails when the default locale has no keys at all.
func (c *Catalog) Verify() error {
	if len(c.Keys(c.defaultLocale)) == 0 {
		return fmt.Errorf("catalog has no keys for default locale %q", c.defaultLocale)
	}
	return nil
}

// Missing lists keys present in the default locale but absent in locale.
func (c *Catalog) Missing(locale string) []string {
	have := c.Keys(locale)
	var missing []string
	for _, key := range c.Keys(c.defaultLocale) {
		if _, found := slices.BinarySearch(have, key); !found {
			missing = append(missing, key)
		}
	}
	return missing
}

func (c *Catalog) Translate(locale, key string, opts Options) (string, error) {
	full := FullKey(opts.Scope, key)

	val, ok := c.find(locale, full, opts.Count)
	if !ok && c.fallback && locale != c.defaultLocale {
		val, ok = c.find(c.defaultLocale, full, opts.Count)
	}
	if !ok {
		if opts.Default == nil {
			return "", &MissingTranslationError{Locale: locale, Key: full}
		}
		val = *opts.Default
	}

	return interpolate(val, opts.Vars, opts.Count), nil
}

func (c *Catalog) find(locale, full string, count *int) (string, bool) {
	switch v := c.k.Get(locale + "." + full).(type) {
	case string:
		return v, true
	case int, int64, float64, bool:
		return fmt.Sprint(v), true
	case map[string]any:
		if count == nil {
			return "", false
		}
		form := pluralForm(*count, v)
		s, ok := v[form].(string)
		return s, ok
	default:
		return "", false
	}
}

func pluralForm(count int, forms map[string]any) string {
	switch {
	case count == 0:
		if _, ok := forms["zero"]; ok {
			return "zero"
		}
	case count == 1:
		return "one"
	}
	return "other"
}

// FullKey resolves a dot-relative key against scope.
func FullKey(scope, key string) string {
	if strings.HasPrefix(key, ".") {
		if scope == "" {
			return strings.TrimPrefix(key, ".")
		}
		return strings.TrimSuffix(scope, ".") + key
	}
	return key
}

func interpolate(s string, vars map[string]string, count *int) string {
	if !strings.Contains(s, "%{") {
		return s
	}
	pairs := make([]string, 0, 2*len(vars)+2)
	for k, v := range vars {
		pairs = append(pairs, "%{"+k+"}", v)
	}
	if count != nil {
		pairs = append(pairs, "%{count}", strconv.Itoa(*count))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

var _ Lookup = (*Catalog)(nil)

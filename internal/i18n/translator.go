// AngelaMos | 2026
// translator.go

package i18n

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// keySentinel is appended to a key to force a miss whose error reveals the
// fully-qualified key.
const keySentinel = "💣"

var missingCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "teams",
	Subsystem: "i18n",
	Name:      "missing_translations_total",
	Help:      "Translation lookups that found no value and no default.",
}, []string{"locale"})

type call struct {
	locale string
	opts   Options
	child  Model
	parent Model
}

type Option func(*call)

func WithDefault(s string) Option {
	return func(c *call) { c.opts.Default = &s }
}

func WithVars(vars map[string]string) Option {
	return func(c *call) {
		if c.opts.Vars == nil {
			c.opts.Vars = make(map[string]string, len(vars))
		}
		maps.Copy(c.opts.Vars, vars)
	}
}

func WithVar(name, value string) Option {
	return WithVars(map[string]string{name: value})
}

func InScope(scope string) Option {
	return func(c *call) { c.opts.Scope = scope }
}

func WithCount(n int) Option {
	return func(c *call) { c.opts.Count = &n }
}

// InLocale overrides the request locale for one call.
func InLocale(locale string) Option {
	return func(c *call) { c.locale = locale }
}

// WithObjects names the models a view is about. Their derived variables are
// only merged on the Account surface.
func WithObjects(child, parent Model) Option {
	return func(c *call) {
		c.child = child
		c.parent = parent
	}
}

// Translator decorates a Lookup with model-derived variables and key
// diagnostics. Callers outside the Account surface with diagnostics off see
// exactly the Lookup contract.
type Translator struct {
	lookup      Lookup
	logger      *slog.Logger
	diagnostics bool
}

func NewTranslator(lookup Lookup, logger *slog.Logger, diagnostics bool) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		lookup:      lookup,
		logger:      logger,
		diagnostics: diagnostics,
	}
}

func (t *Translator) T(ctx context.Context, key string, opts ...Option) (string, error) {
	c := call{locale: LocaleFromContext(ctx)}
	for _, opt := range opts {
		opt(&c)
	}

	surface := SurfaceFromContext(ctx)
	if c.opts.Scope == "" {
		c.opts.Scope = surface.Scope
	}

	if surface.Account {
		vars := Build(c.locale, c.child, c.parent)
		maps.Copy(vars, c.opts.Vars)
		c.opts.Vars = vars
	}

	diagnosing := t.diagnostics && surface.Diagnosing()

	var fullKey string
	if diagnosing {
		fullKey = t.resolveFullKey(c.locale, key, c.opts)
	}

	result, err := t.lookup.Translate(c.locale, key, c.opts)
	if err != nil {
		if errors.Is(err, ErrMissingTranslation) {
			missingCounter.WithLabelValues(c.locale).Inc()
		}
		return "", err
	}

	if !diagnosing {
		return result, nil
	}

	if surface.LogKeys {
		if c.opts.Default != nil && result == *c.opts.Default {
			t.logger.WarnContext(ctx, "translation not found, matched default",
				"key", fullKey,
				"locale", c.locale,
				"result", result,
			)
		} else {
			t.logger.InfoContext(ctx, "translation",
				"key", fullKey,
				"locale", c.locale,
				"result", result,
			)
		}
	}

	if surface.ShowKeys {
		return fullKey, nil
	}
	return result, nil
}

// OT is T with a missing translation reported as ok=false instead of an
// error. Other lookup failures are also swallowed.
func (t *Translator) OT(ctx context.Context, key string, opts ...Option) (string, bool) {
	s, err := t.T(ctx, key, opts...)
	if err != nil {
		return "", false
	}
	return s, true
}

// MustT returns the key itself when the lookup fails.
func (t *Translator) MustT(ctx context.Context, key string, opts ...Option) string {
	s, err := t.T(ctx, key, opts...)
	if err != nil {
		t.logger.WarnContext(ctx, "translation lookup failed",
			"key", key,
			"error", err,
		)
		return key
	}
	return s
}

// resolveFullKey runs a shadow lookup that cannot succeed and reads the
// qualified key off the resulting miss. The default is dropped so the miss
// is guaranteed.
func (t *Translator) resolveFullKey(locale, key string, opts Options) string {
	shadow := opts
	shadow.Default = nil

	_, err := t.lookup.Translate(locale, key+keySentinel, shadow)

	var missing *MissingTranslationError
	if errors.As(err, &missing) {
		return strings.ReplaceAll(missing.Key, keySentinel, "")
	}
	return FullKey(opts.Scope, key)
}

// AngelaMos | 2026
// surface.go

package i18n

import (
	"context"
	"net/http"
	"strconv"
)

const (
	LogLocalesParam  = "log_locales"
	ShowLocalesParam = "show_locales"
)

// Surface describes where a translation call originates. It is set by the
// routing layer and read by the Translator.
type Surface struct {
	// Account is true on tenant-facing routes.
	Account bool
	// Scope is the namespace that dot-relative keys resolve against.
	Scope string
	// LogKeys and ShowKeys are the per-request diagnostic flags.
	LogKeys  bool
	ShowKeys bool
}

func (s Surface) Diagnosing() bool {
	return s.LogKeys || s.ShowKeys
}

type surfaceKey struct{}

func WithSurface(ctx context.Context, s Surface) context.Context {
	return context.WithValue(ctx, surfaceKey{}, s)
}

func SurfaceFromContext(ctx context.Context) Surface {
	s, _ := ctx.Value(surfaceKey{}).(Surface)
	return s
}

// WithScope returns ctx with the surface scope replaced.
func WithScope(ctx context.Context, scope string) context.Context {
	s := SurfaceFromContext(ctx)
	s.Scope = scope
	return WithSurface(ctx, s)
}

// AccountSurface marks every request below it as tenant-facing.
func AccountSurface(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SurfaceFromContext(r.Context())
		s.Account = true
		next.ServeHTTP(w, r.WithContext(WithSurface(r.Context(), s)))
	})
}

// Scoped sets the key namespace for the handlers it wraps.
func Scoped(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

// Diagnostics reads the log_locales and show_locales query flags. When
// disabled the flags are ignored entirely.
func Diagnostics(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			s := SurfaceFromContext(r.Context())
			s.LogKeys = flagSet(q.Get(LogLocalesParam), q.Has(LogLocalesParam))
			s.ShowKeys = flagSet(q.Get(ShowLocalesParam), q.Has(ShowLocalesParam))
			next.ServeHTTP(w, r.WithContext(WithSurface(r.Context(), s)))
		})
	}
}

// flagSet treats a bare "?log_locales" as on and parses anything else as a
// bool, defaulting to on for unrecognized values.
func flagSet(raw string, present bool) bool {
	if !present {
		return false
	}
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

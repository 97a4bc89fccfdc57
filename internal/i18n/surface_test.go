// AngelaMos | 2026
// surface_test.go

package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureSurface(mw ...func(http.Handler) http.Handler) func(target string) Surface {
	return func(target string) Surface {
		var got Surface
		var h http.Handler = http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got = SurfaceFromContext(r.Context())
		})
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](h)
		}
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
		return got
	}
}

func TestDiagnosticsFlags(t *testing.T) {
	run := captureSurface(Diagnostics(true))

	tests := []struct {
		target   string
		wantLog  bool
		wantShow bool
	}{
		{"/", false, false},
		{"/?log_locales", true, false},
		{"/?show_locales=1", false, true},
		{"/?show_locales=false&log_locales=true", true, false},
		{"/?show_locales=yes", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			s := run(tt.target)
			assert.Equal(t, tt.wantLog, s.LogKeys)
			assert.Equal(t, tt.wantShow, s.ShowKeys)
		})
	}
}

func TestDiagnosticsDisabled(t *testing.T) {
	s := captureSurface(Diagnostics(false))("/?log_locales=1&show_locales=1")

	assert.False(t, s.Diagnosing())
}

func TestAccountSurfaceAndScope(t *testing.T) {
	s := captureSurface(
		Diagnostics(true),
		AccountSurface,
		Scoped("account.dashboard"),
	)("/?show_locales=1")

	assert.True(t, s.Account)
	assert.True(t, s.ShowKeys)
	assert.Equal(t, "account.dashboard", s.Scope)
}

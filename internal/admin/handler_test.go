// AngelaMos | 2026
// handler_test.go

package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct{}

func (fakeCatalog) DefaultLocale() string { return "en" }

func (fakeCatalog) Locales() []string { return []string{"de", "en"} }

func (fakeCatalog) Keys(locale string) []string {
	if locale == "en" {
		return []string{"a", "b", "c"}
	}
	return []string{"a"}
}

func (fakeCatalog) Missing(locale string) []string {
	if locale == "de" {
		return []string{"b", "c"}
	}
	return nil
}

func TestGetLocales(t *testing.T) {
	h := NewHandler(HandlerConfig{Catalog: fakeCatalog{}})

	var guarded bool
	guard := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guarded = true
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewRouter()
	h.RegisterRoutes(r, guard)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/developer/locales", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, guarded)

	var body struct {
		Data LocalesResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "en", body.Data.DefaultLocale)
	assert.Equal(t, 3, body.Data.DefaultKeys)
	require.Len(t, body.Data.Locales, 2)
	assert.Equal(t, []string{"b", "c"}, body.Data.Locales[0].Missing)
	assert.Equal(t, []string{}, body.Data.Locales[1].Missing)
}

func TestGetRuntimeStats(t *testing.T) {
	h := NewHandler(HandlerConfig{})

	rec := httptest.NewRecorder()
	h.GetRuntimeStats(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data RuntimeStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.GoVersion)
	assert.NotEmpty(t, body.Data.MemAllocText)
}

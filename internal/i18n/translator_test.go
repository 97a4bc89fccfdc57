// AngelaMos | 2026
// translator_test.go

package i18n

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLookup struct {
	inner Lookup
	keys  []string
	opts  []Options
}

func (r *recordingLookup) Translate(locale, key string, opts Options) (string, error) {
	r.keys = append(r.keys, key)
	r.opts = append(r.opts, opts)
	return r.inner.Translate(locale, key, opts)
}

func newTestTranslator(t *testing.T, diagnostics bool) (*Translator, *recordingLookup, *bytes.Buffer) {
	t.Helper()
	lookup := &recordingLookup{inner: loadTestCatalog(t, true)}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewTranslator(lookup, logger, diagnostics), lookup, &buf
}

func accountCtx(s Surface) context.Context {
	s.Account = true
	return WithSurface(context.Background(), s)
}

func TestTranslatorPlainLookup(t *testing.T) {
	tr, lookup, buf := newTestTranslator(t, true)

	got, err := tr.T(context.Background(), "account.dashboard.title")
	require.NoError(t, err)
	assert.Equal(t, "Dashboard", got)
	assert.Len(t, lookup.keys, 1)
	assert.Empty(t, buf.String())
}

func TestTranslatorShowKeysReturnsFullKey(t *testing.T) {
	tr, lookup, _ := newTestTranslator(t, true)
	ctx := accountCtx(Surface{Scope: "account.dashboard", ShowKeys: true})

	got, err := tr.T(ctx, ".welcome_message", WithObjects(team("Acme"), nil))
	require.NoError(t, err)
	assert.Equal(t, "account.dashboard.welcome_message", got)

	require.Len(t, lookup.keys, 2)
	assert.Equal(t, ".welcome_message"+keySentinel, lookup.keys[0])
	assert.Equal(t, ".welcome_message", lookup.keys[1])
}

func TestTranslatorShadowLookupDropsDefault(t *testing.T) {
	tr, lookup, _ := newTestTranslator(t, true)
	ctx := accountCtx(Surface{ShowKeys: true})

	got, err := tr.T(ctx, "teams.nothing_here", WithDefault("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "teams.nothing_here", got)

	require.Len(t, lookup.opts, 2)
	assert.Nil(t, lookup.opts[0].Default)
	require.NotNil(t, lookup.opts[1].Default)
	assert.Equal(t, "fallback", *lookup.opts[1].Default)
}

func TestTranslatorDiagnosticsDisabledIgnoresFlags(t *testing.T) {
	tr, lookup, buf := newTestTranslator(t, false)
	ctx := accountCtx(Surface{Scope: "account.dashboard", ShowKeys: true, LogKeys: true})

	got, err := tr.T(ctx, ".welcome_message", WithObjects(team("Acme"), nil))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Acme", got)
	assert.Len(t, lookup.keys, 1)
	assert.Empty(t, buf.String())
}

func TestTranslatorLogKeys(t *testing.T) {
	tr, _, buf := newTestTranslator(t, true)
	ctx := accountCtx(Surface{Scope: "account.dashboard", LogKeys: true})

	got, err := tr.T(ctx, ".welcome_message", WithObjects(team("Acme"), nil))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Acme", got)
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "key=account.dashboard.welcome_message")
	assert.Contains(t, buf.String(), `result="Welcome to Acme"`)
}

func TestTranslatorLogKeysMatchedDefault(t *testing.T) {
	tr, _, buf := newTestTranslator(t, true)
	ctx := WithSurface(context.Background(), Surface{LogKeys: true})

	got, err := tr.T(ctx, "teams.nothing_here", WithDefault("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "translation not found, matched default")
	assert.Contains(t, buf.String(), "key=teams.nothing_here")
}

func TestTranslatorCallerVarsWin(t *testing.T) {
	tr, _, _ := newTestTranslator(t, false)
	ctx := accountCtx(Surface{Scope: "account.dashboard"})

	got, err := tr.T(ctx, ".welcome_message",
		WithObjects(team("Acme"), nil),
		WithVar("team_name", "Override"),
	)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Override", got)
}

func TestTranslatorParentObjectWins(t *testing.T) {
	tr, lookup, _ := newTestTranslator(t, false)
	ctx := accountCtx(Surface{})

	_, err := tr.T(ctx, "account.dashboard.welcome_message",
		WithObjects(team("Child"), team("Parent")),
	)
	require.NoError(t, err)
	assert.Equal(t, "Parent", lookup.opts[0].Vars["team_name"])
}

func TestTranslatorObjectsIgnoredOffAccount(t *testing.T) {
	tr, lookup, _ := newTestTranslator(t, false)

	_, err := tr.T(context.Background(), "account.dashboard.welcome_message",
		WithObjects(team("Acme"), nil),
	)
	require.NoError(t, err)
	assert.Empty(t, lookup.opts[0].Vars)
}

func TestTranslatorMissing(t *testing.T) {
	tr, _, _ := newTestTranslator(t, false)

	_, err := tr.T(context.Background(), "teams.nothing_here")
	assert.ErrorIs(t, err, ErrMissingTranslation)

	got, ok := tr.OT(context.Background(), "teams.nothing_here")
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = tr.OT(context.Background(), "account.dashboard.title")
	assert.True(t, ok)
	assert.Equal(t, "Dashboard", got)

	assert.Equal(t, "teams.nothing_here", tr.MustT(context.Background(), "teams.nothing_here"))
}

func TestTranslatorLocaleSources(t *testing.T) {
	tr, _, _ := newTestTranslator(t, false)
	ctx := WithLocale(context.Background(), "de")

	got, err := tr.T(ctx, "account.dashboard.title")
	require.NoError(t, err)
	assert.Equal(t, "Übersicht", got)

	got, err = tr.T(ctx, "account.dashboard.title", InLocale("en"))
	require.NoError(t, err)
	assert.Equal(t, "Dashboard", got)
}

func TestTranslatorCount(t *testing.T) {
	tr, _, _ := newTestTranslator(t, false)

	got, err := tr.T(context.Background(), "teams.members", WithCount(3))
	require.NoError(t, err)
	assert.Equal(t, "3 members", got)
}

// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeygenWritesKeyPair(t *testing.T) {
	dir := t.TempDir()
	private := filepath.Join(dir, "keys", "private.pem")
	public := filepath.Join(dir, "keys", "public.pem")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"keygen", "--private", private, "--public", public})

	require.NoError(t, root.Execute())

	info, err := os.Stat(private)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(public)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "wrote")
}

func TestLocalesCheck(t *testing.T) {
	dir := t.TempDir()
	locales := filepath.Join(dir, "locales")
	require.NoError(t, os.MkdirAll(locales, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(locales, "en.yml"),
		[]byte("en:\n  greeting: Hello\n  farewell: Bye\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(locales, "de.yml"),
		[]byte("de:\n  greeting: Hallo\n"), 0o600))

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"database:\n  url: postgres://localhost/teams\n"+
			"redis:\n  url: redis://localhost\n"+
			"i18n:\n  locales_path: "+locales+"\n",
	), 0o600))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"locales", "check", "--config", configPath})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "de: 1 keys, 1 missing")
	assert.Contains(t, out.String(), "  farewell")

	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"locales", "check", "--strict", "--config", configPath})
	assert.ErrorIs(t, root.Execute(), errIncompleteLocales)
}

func TestMigrateList(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"migrate", "--list"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "0001_init\n0002_pending_memberships\n", out.String())
}

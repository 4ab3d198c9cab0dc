package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePasswordsFile(t *testing.T, configHome, content string, mode os.FileMode) string {
	t.Helper()
	dir := filepath.Join(configHome, "shrine")
	require.NoError(t, os.MkdirAll(dir, 0700))
	path := filepath.Join(dir, "passwords")
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func TestCachedPasswords_MissingFileIsEmpty(t *testing.T) {
	entries, err := CachedPasswords(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCachedPasswords_ParsesEntries(t *testing.T) {
	home := t.TempDir()
	writePasswordsFile(t, home, "11111111-1111-1111-1111-111111111111=secret\n\n22222222-2222-2222-2222-222222222222=with=equals\n", 0600)

	entries, err := CachedPasswords(home)
	require.NoError(t, err)
	assert.Equal(t, "secret", entries["11111111-1111-1111-1111-111111111111"])
	assert.Equal(t, "with=equals", entries["22222222-2222-2222-2222-222222222222"])
}

func TestCachedPasswords_WrongModeIsIgnored(t *testing.T) {
	home := t.TempDir()
	writePasswordsFile(t, home, "11111111-1111-1111-1111-111111111111=secret\n", 0644)

	entries, err := CachedPasswords(home)
	require.Error(t, err)
	var modeErr *ErrPasswordsFileMode
	assert.ErrorAs(t, err, &modeErr)
	assert.Empty(t, entries)
}

package commands

import (
	"bytes"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	os.Setenv("SHRINE_DEBUG_KDF", "1")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(new(bytes.Buffer), &slog.HandlerOptions{Level: slog.LevelError}))
}

// End-to-end: init with a password, set a key, get it back.
func TestInitSetGet(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "key", "val"))

	var out bytes.Buffer
	require.NoError(t, RunGet(&out, strings.NewReader(""), logger, path, "p", "key", "raw"))
	assert.Equal(t, "val", out.String())
}

// Nested keys under a shared prefix list in lexicographic order.
func TestNestedKeysListedInOrder(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "a/b/c", "hi"))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "a/b/d", "ho"))

	var out bytes.Buffer
	require.NoError(t, RunLs(&out, strings.NewReader(""), logger, path, "p", ""))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a/b/c\t"))
	assert.True(t, strings.HasPrefix(lines[1], "a/b/d\t"))
}

// Setting a leaf where an Index already exists fails and the shrine file is
// left unchanged.
func TestIndexCollisionLeavesShrineUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "a/b/c", "hi"))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "a/b/d", "ho"))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "a/b", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is an index in")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// Convert to a new password; the old password no longer opens the shrine.
func TestConvertRekeysPassword(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "key", "val"))
	require.NoError(t, RunConvert(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "p1", "aes", false))

	var out bytes.Buffer
	require.NoError(t, RunGet(&out, strings.NewReader(""), logger, path, "p1", "key", "raw"))
	assert.Equal(t, "val", out.String())

	err := RunGet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "key", "raw")
	assert.Error(t, err)
}

// Import a dotenv file under a prefix and read one of the imported values
// back.
func TestDotenvImport(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("# a comment\nkey1=val1\n\nkey2=val2\n"), fs.FileMode(0600)))

	require.NoError(t, RunImport(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", envFile, "env/"))

	var out bytes.Buffer
	require.NoError(t, RunGet(&out, strings.NewReader(""), logger, path, "p", "env/key2", "raw"))
	assert.Equal(t, "val2", out.String())
}

func TestRunRm_RemovesKey(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "key", "val"))
	require.NoError(t, RunRm(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "key"))

	err := RunGet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "key", "raw")
	assert.Error(t, err)
}

func TestRunRm_MissingKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "none", "json", false, false, false))
	err := RunRm(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "missing")
	assert.Error(t, err)
}

func TestRunInit_RefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "none", "json", false, false, false))
	err := RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "none", "json", false, false, false)
	assert.Error(t, err)

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "none", "json", false, true, false))
}

func TestRunInfo_ReportsFields(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "msgpack", false, false, false))

	var out bytes.Buffer
	require.NoError(t, RunInfo(&out, logger, path, "encryption"))
	assert.Equal(t, "aes\n", out.String())

	out.Reset()
	require.NoError(t, RunInfo(&out, logger, path, "serialization"))
	assert.Equal(t, "messagepack\n", out.String())
}

func TestRunConfigSetGet(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))
	require.NoError(t, RunConfigSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", ".git.enabled", "true"))

	var out bytes.Buffer
	require.NoError(t, RunConfigGet(&out, strings.NewReader(""), logger, path, "p", ".git.enabled"))
	assert.Equal(t, "true\n", out.String())
}

func TestRunDump_PrintsKeyValuePairs(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "none", "json", false, false, false))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "a", "1"))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "b", "2"))

	var out bytes.Buffer
	require.NoError(t, RunDump(&out, strings.NewReader(""), logger, path, "", "", false))
	assert.Equal(t, "a=1\nb=2\n", out.String())
}

func TestRunSet_StdinValue(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "none", "json", false, false, false))
	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader("piped-value\n"), logger, path, "", "key", ""))

	var out bytes.Buffer
	require.NoError(t, RunGet(&out, strings.NewReader(""), logger, path, "", "key", "raw"))
	assert.Equal(t, "piped-value", out.String())
}

func TestRunInit_StrongPasswordRejectsWeakPassword(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	err := RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "short", "aes", "json", false, false, true)
	assert.Error(t, err)
}

func TestRunInit_StrongPasswordAcceptsStrongPassword(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "Str0ng!Pass", "aes", "json", false, false, true))
}

func TestRunConvert_StrongPasswordRejectsWeakPassword(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))
	err := RunConvert(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "weak", "aes", true)
	assert.Error(t, err)
}

func TestResolvePassword_UsesCachedPasswordsFile(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))

	var uuidOut bytes.Buffer
	require.NoError(t, RunInfo(&uuidOut, logger, path, "uuid"))
	id := strings.TrimSpace(uuidOut.String())

	configHome := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(configHome, "shrine"), fs.FileMode(0700)))
	passwordsPath := filepath.Join(configHome, "shrine", "passwords")
	require.NoError(t, os.WriteFile(passwordsPath, []byte(id+"=p\n"), fs.FileMode(0600)))
	t.Setenv("XDG_CONFIG_HOME", configHome)

	require.NoError(t, RunSet(new(bytes.Buffer), strings.NewReader(""), logger, path, "", "key", "val"))

	var out bytes.Buffer
	require.NoError(t, RunGet(&out, strings.NewReader(""), logger, path, "", "key", "raw"))
	assert.Equal(t, "val", out.String())
}

func TestResolvePassword_IgnoresWorldReadablePasswordsFile(t *testing.T) {
	dir := t.TempDir()
	path := ShrinePath(dir)
	logger := discardLogger()

	require.NoError(t, RunInit(new(bytes.Buffer), strings.NewReader(""), logger, path, "p", "aes", "json", false, false, false))

	var uuidOut bytes.Buffer
	require.NoError(t, RunInfo(&uuidOut, logger, path, "uuid"))
	id := strings.TrimSpace(uuidOut.String())

	configHome := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(configHome, "shrine"), fs.FileMode(0700)))
	passwordsPath := filepath.Join(configHome, "shrine", "passwords")
	require.NoError(t, os.WriteFile(passwordsPath, []byte(id+"=p\n"), fs.FileMode(0644)))
	t.Setenv("XDG_CONFIG_HOME", configHome)

	// The file must be ignored: the password falls through to the prompt
	// reader, which supplies the wrong password here.
	err := RunGet(new(bytes.Buffer), strings.NewReader("wrong\n"), logger, path, "", "key", "raw")
	assert.Error(t, err)
}

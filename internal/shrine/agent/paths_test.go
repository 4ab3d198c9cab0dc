package agent

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	paths, err := ResolvePaths("/run/user/1000")
	require.NoError(t, err)
	assert.Equal(t, "/run/user/1000/shrine.socket", paths.Socket)
	assert.Equal(t, "/run/user/1000/shrine.pid", paths.Pid)
	assert.Equal(t, "/run/user/1000/shrine.out", paths.Stdout)
	assert.Equal(t, "/run/user/1000/shrine.err", paths.Stderr)
}

func TestResolvePaths_MissingRuntimeDir(t *testing.T) {
	_, err := ResolvePaths("")
	assert.ErrorIs(t, err, ErrNoRuntimeDir)
}

func TestPidFile_WriteReadRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shrine.pid")

	require.NoError(t, WritePidFile(path, 4242))
	pid, err := ReadPidFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	require.NoError(t, RemovePidFile(path))
	_, err = ReadPidFile(path)
	assert.Error(t, err)
}

func TestRemovePidFile_ToleratesMissing(t *testing.T) {
	assert.NoError(t, RemovePidFile(filepath.Join(t.TempDir(), "does-not-exist")))
}

func TestIsRunning_NoPidFile(t *testing.T) {
	running, pid := IsRunning(Paths{Pid: filepath.Join(t.TempDir(), "missing.pid")})
	assert.False(t, running)
	assert.Equal(t, 0, pid)
}

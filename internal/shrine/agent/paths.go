package agent

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths bundles the four files the agent owns under $XDG_RUNTIME_DIR: the
// Unix socket, the pid file, and stdout/stderr log files for the
// daemonized process.
type Paths struct {
	Socket string
	Pid    string
	Stdout string
	Stderr string
}

// ErrNoRuntimeDir is returned by ResolvePaths when XDG_RUNTIME_DIR is unset;
// the agent has no well-defined place to put its socket without it.
var ErrNoRuntimeDir = fmt.Errorf("XDG_RUNTIME_DIR is not set")

// ResolvePaths computes the agent's file locations from xdgRuntimeDir, the
// value of $XDG_RUNTIME_DIR (required).
func ResolvePaths(xdgRuntimeDir string) (Paths, error) {
	if xdgRuntimeDir == "" {
		return Paths{}, ErrNoRuntimeDir
	}
	return Paths{
		Socket: filepath.Join(xdgRuntimeDir, "shrine.socket"),
		Pid:    filepath.Join(xdgRuntimeDir, "shrine.pid"),
		Stdout: filepath.Join(xdgRuntimeDir, "shrine.out"),
		Stderr: filepath.Join(xdgRuntimeDir, "shrine.err"),
	}, nil
}

func removeStaleSocket(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WritePidFile records the running agent's pid.
func WritePidFile(path string, pid int) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0600)
}

// ReadPidFile reads back a pid written by WritePidFile.
func ReadPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, err
	}
	return pid, nil
}

// RemovePidFile and RemoveSocket clean up on shutdown; both tolerate the
// file already being gone.
func RemovePidFile(path string) error { return removeStaleSocket(path) }
func RemoveSocket(path string) error  { return removeStaleSocket(path) }

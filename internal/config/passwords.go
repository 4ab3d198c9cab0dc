package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPasswordsFileMode is returned by CachedPasswords when the passwords
// file exists but is not mode 0600. Callers log a warning and proceed as
// if the file were absent; a group- or world-readable password file is
// never consulted.
type ErrPasswordsFileMode struct {
	Path string
	Mode os.FileMode
}

func (e *ErrPasswordsFileMode) Error() string {
	return fmt.Sprintf("ignoring `%s`: mode %04o, want 0600", e.Path, e.Mode)
}

// PasswordsFilePath locates the optional cached-passwords file under
// configHome ($XDG_CONFIG_HOME or its HOME/.config fallback).
func PasswordsFilePath(configHome string) string {
	return filepath.Join(configHome, "shrine", "passwords")
}

// CachedPasswords reads the optional passwords file: one `uuid=password`
// entry per line, split on the first `=` so passwords may themselves
// contain `=`. A missing file yields an empty map and no error; a file
// with mode other than 0600 yields *ErrPasswordsFileMode and no entries.
func CachedPasswords(configHome string) (map[string]string, error) {
	path := PasswordsFilePath(configHome)

	info, err := os.Stat(path)
	if err != nil {
		return map[string]string{}, nil
	}
	if info.Mode().Perm() != 0600 {
		return map[string]string{}, &ErrPasswordsFileMode{Path: path, Mode: info.Mode().Perm()}
	}

	f, err := os.Open(path)
	if err != nil {
		return map[string]string{}, nil
	}
	defer f.Close()

	entries := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, password, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		entries[id] = password
	}
	return entries, nil
}

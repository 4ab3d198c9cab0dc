// Package config provides application configuration management through
// environment variables, following the same allisson/go-env +
// joho/godotenv recursive-.env-discovery pattern used throughout this
// codebase's server configuration, repointed at the shrine's own
// environment surface.
package config

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds shrine-wide configuration resolved from the environment.
type Config struct {
	// DefaultSerialization is the serializer `init` uses when
	// --serialization is not given.
	DefaultSerialization string

	// DefaultEncryption is the cipher `init` uses when --encryption is
	// not given.
	DefaultEncryption string

	// LogLevel controls the structured logger's verbosity.
	LogLevel string

	// XDGRuntimeDir backs the agent's socket/pid/log file locations.
	// Required for the agent; optional for single-shot CLI commands that
	// never talk to it.
	XDGRuntimeDir string

	// XDGConfigHome backs the optional cached-passwords file
	// ($XDG_CONFIG_HOME/shrine/passwords).
	XDGConfigHome string
}

// Load loads configuration from environment variables. It first attempts
// to load a .env file by searching recursively from the current directory
// up to the root directory. If no .env file is found, it continues with
// existing environment variables.
func Load() *Config {
	loadDotEnv()

	return &Config{
		DefaultSerialization: env.GetString("SHRINE_DEFAULT_SERIALIZATION", "json"),
		DefaultEncryption:    env.GetString("SHRINE_DEFAULT_ENCRYPTION", "aes"),
		LogLevel:             env.GetString("SHRINE_LOG_LEVEL", "info"),
		XDGRuntimeDir:        env.GetString("XDG_RUNTIME_DIR", ""),
		XDGConfigHome:        env.GetString("XDG_CONFIG_HOME", defaultConfigHome()),
	}
}

// GetGinMode maps LogLevel to the gin.SetMode value the agent server uses:
// "debug" logging runs gin in its verbose debug mode, everything else runs
// release.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

func defaultConfigHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// loadDotEnv searches for a .env file recursively from the current
// directory up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

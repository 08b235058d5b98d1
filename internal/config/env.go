package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv loads a .env file from the working directory if present. Missing
// files are fine; real environment variables always win.
func LoadEnv(logger *zap.Logger) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to load .env file", zap.Error(err))
		}
		return
	}
	logger.Debug("loaded environment from .env")
}

// Getenv returns the environment variable value or fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetenvInt returns the environment variable parsed as int, or fallback when
// unset or unparsable.
func GetenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// DataDir returns the application data directory, creating it if needed.
// Defaults to ~/.speechbench and is overridable with SPEECHBENCH_DATA_DIR.
func DataDir() (string, error) {
	if dir := os.Getenv("SPEECHBENCH_DATA_DIR"); dir != "" {
		return dir, os.MkdirAll(dir, 0o755)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".speechbench")
	return dir, os.MkdirAll(dir, 0o755)
}

// ScratchDir returns the upload scratch directory, creating it if needed.
func ScratchDir() (string, error) {
	if dir := os.Getenv("SPEECHBENCH_SCRATCH_DIR"); dir != "" {
		return dir, os.MkdirAll(dir, 0o755)
	}
	dir := filepath.Join(os.TempDir(), "speechbench")
	return dir, os.MkdirAll(dir, 0o755)
}

package aeap

import (
	"os"
	"time"

	"go.uber.org/zap"

	"speechbench/internal/app/engine"
)

func init() {
	engine.RegisterCreator(engine.NameAEAP, createFromSettings)
}

func createFromSettings(settings map[string]interface{}) (engine.Engine, error) {
	config := Config{
		BaseURL: os.Getenv("AEAP_SERVER_URL"),
	}

	if baseURL, ok := settings["base_url"].(string); ok && baseURL != "" {
		config.BaseURL = baseURL
	}
	if timeoutSec, ok := settings["timeout_sec"].(int); ok && timeoutSec > 0 {
		config.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if maxAttempts, ok := settings["max_attempts"].(int); ok {
		config.MaxAttempts = maxAttempts
	}
	if backoffMs, ok := settings["backoff_ms"].(int); ok && backoffMs > 0 {
		config.Backoff = time.Duration(backoffMs) * time.Millisecond
	}

	return New(config, zap.L().Named("aeap")), nil
}

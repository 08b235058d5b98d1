// Package cache memoizes transcription results in Redis keyed by audio
// content, so re-running a benchmark over an unchanged corpus skips the
// expensive engine calls.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"speechbench/internal/app/engine"
)

// DefaultTTL keeps cached results for a week. Model upgrades invalidate by
// key prefix bump, not expiry.
const DefaultTTL = 7 * 24 * time.Hour

const keyPrefix = "speechbench:v1:result"

// ResultCache is a content-addressed transcription result cache.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a cache against addr. Returns nil (a disabled cache) when addr
// is empty; every method on a nil cache is a no-op miss.
func New(addr, password string, db int, logger *zap.Logger) *ResultCache {
	if addr == "" {
		return nil
	}
	return &ResultCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl:    DefaultTTL,
		logger: logger,
	}
}

// HashFile returns the sha256 of a file's content, hex encoded.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash audio: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash audio: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func cacheKey(audioHash, engineName, language string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, audioHash, engineName, language)
}

// Get returns the cached result for the audio hash and engine, or nil on
// miss. Cache trouble is logged and treated as a miss.
func (c *ResultCache) Get(ctx context.Context, audioHash, engineName, language string) *engine.Result {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, cacheKey(audioHash, engineName, language)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.Error(err))
		}
		return nil
	}
	var res engine.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		c.logger.Warn("discarding unreadable cache entry", zap.Error(err))
		return nil
	}
	return &res
}

// Put stores a result. Failures are logged, never escalated; the cache is an
// optimization.
func (c *ResultCache) Put(ctx context.Context, audioHash, engineName, language string, res *engine.Result) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(audioHash, engineName, language), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache put failed", zap.Error(err))
	}
}

// Close releases the client connection.
func (c *ResultCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

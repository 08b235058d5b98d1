package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"speechbench/internal/app/cache"
	"speechbench/internal/app/engine"
	"speechbench/internal/app/intake"
	"speechbench/internal/app/metrics"
	"speechbench/internal/app/orchestrator"
	"speechbench/internal/app/repository"
	"speechbench/internal/app/storage"
	"speechbench/internal/config"
)

// provideEnginesConfig loads engines.yaml from SPEECHBENCH_ENGINES_CONFIG or
// the default location.
func provideEnginesConfig() (*config.EnginesConfig, error) {
	path := config.Getenv("SPEECHBENCH_ENGINES_CONFIG", "configs/engines.yaml")
	return config.LoadEnginesConfig(path)
}

// provideRegistry builds every enabled engine. An engine that fails to
// construct (a missing API key, say) is skipped with a warning so the
// remaining engines stay usable.
func provideRegistry(cfg *config.EnginesConfig, logger *zap.Logger) (*engine.Registry, error) {
	registry := engine.NewRegistry()
	for _, block := range cfg.Enabled() {
		creator, err := engine.GetCreator(block.Name)
		if err != nil {
			logger.Warn("unknown engine in config", zap.String("engine", block.Name))
			continue
		}
		eng, err := creator(block.Settings)
		if err != nil {
			logger.Warn("engine unavailable",
				zap.String("engine", block.Name), zap.Error(err))
			continue
		}
		if err := registry.Add(block.Name, eng); err != nil {
			return nil, err
		}
	}
	if len(registry.Names()) == 0 {
		return nil, fmt.Errorf("no engines could be constructed")
	}
	return registry, nil
}

func provideIntakeStore(logger *zap.Logger) (*intake.Store, error) {
	dir, err := config.ScratchDir()
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	return intake.NewStore(dir, logger)
}

func provideHistory() (repository.HistoryDAO, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	return repository.NewHistoryDAO(
		config.Getenv("SPEECHBENCH_DB_TYPE", "sqlite"),
		filepath.Join(dataDir, "history.db"),
		config.Getenv("SPEECHBENCH_POSTGRES_DSN", ""),
	)
}

// provideCache returns a disabled cache unless REDIS_ADDR is set.
func provideCache(logger *zap.Logger) *cache.ResultCache {
	return cache.New(
		config.Getenv("REDIS_ADDR", ""),
		config.Getenv("REDIS_PASSWORD", ""),
		config.GetenvInt("REDIS_DB", 0),
		logger,
	)
}

// provideArchive returns a disabled archive unless MINIO_ENDPOINT is set.
func provideArchive(logger *zap.Logger) (*storage.Archive, error) {
	return storage.NewArchive(context.Background(), storage.ArchiveConfig{
		Endpoint:  config.Getenv("MINIO_ENDPOINT", ""),
		AccessKey: config.Getenv("MINIO_ACCESS_KEY", ""),
		SecretKey: config.Getenv("MINIO_SECRET_KEY", ""),
		Bucket:    config.Getenv("MINIO_BUCKET", "speechbench-audio"),
		UseSSL:    config.Getenv("MINIO_USE_SSL", "") == "true",
	}, logger)
}

func provideMetrics() *metrics.Metrics {
	return metrics.New()
}

func provideOrchestrator(registry *engine.Registry, m *metrics.Metrics, logger *zap.Logger) *orchestrator.Orchestrator {
	return orchestrator.New(registry, m, logger, 0)
}

package app

import (
	"go.uber.org/zap"

	"speechbench/internal/app/cache"
	"speechbench/internal/app/engine"
	"speechbench/internal/app/intake"
	"speechbench/internal/app/metrics"
	"speechbench/internal/app/orchestrator"
	"speechbench/internal/app/repository"
	"speechbench/internal/app/storage"
)

// Application bundles the wired components a command needs.
type Application struct {
	Registry     *engine.Registry
	Orchestrator *orchestrator.Orchestrator
	Metrics      *metrics.Metrics
	Intake       *intake.Store
	History      repository.HistoryDAO
	Cache        *cache.ResultCache
	Archive      *storage.Archive
	Logger       *zap.Logger
}

// NewApplication assembles the application from its wired parts.
func NewApplication(
	registry *engine.Registry,
	orch *orchestrator.Orchestrator,
	m *metrics.Metrics,
	store *intake.Store,
	history repository.HistoryDAO,
	resultCache *cache.ResultCache,
	archive *storage.Archive,
	logger *zap.Logger,
) *Application {
	return &Application{
		Registry:     registry,
		Orchestrator: orch,
		Metrics:      m,
		Intake:       store,
		History:      history,
		Cache:        resultCache,
		Archive:      archive,
		Logger:       logger,
	}
}

// Close releases the application's long-lived resources.
func (a *Application) Close() {
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			a.Logger.Warn("failed to close history store", zap.Error(err))
		}
	}
	if err := a.Cache.Close(); err != nil {
		a.Logger.Warn("failed to close result cache", zap.Error(err))
	}
}

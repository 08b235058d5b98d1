//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"
)

// InitializeApplication wires the full component graph from configuration
// and environment.
func InitializeApplication(logger *zap.Logger) (*Application, error) {
	wire.Build(
		provideEnginesConfig,
		provideRegistry,
		provideMetrics,
		provideOrchestrator,
		provideIntakeStore,
		provideHistory,
		provideCache,
		provideArchive,
		NewApplication,
	)
	return nil, nil
}

package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"speechbench/internal/app/audio"
	"speechbench/internal/app/engine"
	"speechbench/internal/app/metrics"
)

// DefaultCallTimeout bounds a single engine call so a hung backend cannot
// stall the whole comparison.
const DefaultCallTimeout = 2 * time.Minute

// Outcome is one engine's slot in a ComparisonResult: either a result or an
// error record, never both.
type Outcome struct {
	Result *engine.Result
	Err    *engine.Error
}

// ComparisonResult maps engine name to its outcome. It contains exactly the
// engines the request selected; a failed engine keeps its key.
type ComparisonResult map[string]*Outcome

// AllFailed reports whether every selected engine produced an error record.
func (cr ComparisonResult) AllFailed() bool {
	for _, outcome := range cr {
		if outcome.Err == nil {
			return false
		}
	}
	return len(cr) > 0
}

// Orchestrator dispatches one audio input to the engines a mode selects and
// assembles the unified result.
type Orchestrator struct {
	registry *engine.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
	timeout  time.Duration
}

// New creates an orchestrator. timeout bounds each engine call; zero selects
// DefaultCallTimeout.
func New(registry *engine.Registry, m *metrics.Metrics, logger *zap.Logger, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Orchestrator{
		registry: registry,
		metrics:  m,
		logger:   logger,
		timeout:  timeout,
	}
}

// Compare runs the engines selected by mode concurrently. One engine's
// failure or latency never prevents a sibling from completing or from
// contributing its outcome.
func (o *Orchestrator) Compare(ctx context.Context, audioPath, language string, mode engine.Mode) ComparisonResult {
	names := mode.Engines()
	results := make(ComparisonResult, len(names))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			outcome := o.runOne(ctx, name, audioPath, language)
			mu.Lock()
			results[name] = outcome
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	return results
}

// Transcribe runs a single named engine and returns its result directly.
func (o *Orchestrator) Transcribe(ctx context.Context, name, audioPath, language string) (*engine.Result, error) {
	outcome := o.runOne(ctx, name, audioPath, language)
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	return outcome.Result, nil
}

// Engines exposes the registry for health and listing endpoints.
func (o *Orchestrator) Engines() *engine.Registry {
	return o.registry
}

func (o *Orchestrator) runOne(ctx context.Context, name, audioPath, language string) (outcome *Outcome) {
	start := time.Now()

	// An engine panic becomes that engine's error record; siblings keep
	// running.
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("engine panicked",
				zap.String("engine", name), zap.Any("panic", r))
			outcome = &Outcome{Err: engine.NewError(engine.CodeInternal, name,
				"engine panicked: %v", r)}
			o.metrics.ObserveTranscription(name, engine.CodeInternal, time.Since(start))
		}
	}()

	eng, err := o.registry.Get(name)
	if err != nil {
		return &Outcome{Err: engine.NewError(engine.CodeInternal, name, "%v", err)}
	}

	path := audioPath
	if eng.Info().RequiresCanonical {
		normalized, err := audio.Normalize(ctx, audioPath)
		if err != nil {
			e := engine.AsError(err, name)
			o.metrics.ObserveTranscription(name, e.Code, time.Since(start))
			return &Outcome{Err: e}
		}
		defer normalized.Cleanup(o.logger)
		path = normalized.Path
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	callStart := time.Now()
	result, err := eng.Transcribe(callCtx, &engine.Request{AudioPath: path, Language: language})
	elapsed := time.Since(callStart)

	if err != nil {
		e := engine.AsError(err, name)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			e = engine.NewError(engine.CodeTimeout, name,
				"engine call exceeded %s", o.timeout)
		}
		o.logger.Warn("transcription failed",
			zap.String("engine", name),
			zap.String("code", e.Code),
			zap.Duration("elapsed", elapsed),
			zap.Error(e))
		o.metrics.ObserveTranscription(name, e.Code, elapsed)
		return &Outcome{Err: e}
	}

	// Duration is attributed per engine by the orchestrator, never shared.
	result.ProcessingTime = elapsed
	result.Engine = name

	o.logger.Info("transcription complete",
		zap.String("engine", name),
		zap.Duration("elapsed", elapsed),
		zap.String("language", result.Language))
	o.metrics.ObserveTranscription(name, "success", elapsed)
	return &Outcome{Result: result}
}

package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"speechbench/internal/app/engine"
	"speechbench/internal/app/engine/enginetest"
	"speechbench/internal/app/metrics"
)

func newTestOrchestrator(t *testing.T, timeout time.Duration, engines ...*enginetest.MockEngine) *Orchestrator {
	t.Helper()
	registry := engine.NewRegistry()
	for _, e := range engines {
		require.NoError(t, registry.Add(e.EngineName, e))
	}
	return New(registry, metrics.New(), zap.NewNop(), timeout)
}

func TestCompareBothEnginesSucceed(t *testing.T) {
	whisper := enginetest.NewMock(engine.NameWhisper)
	aeap := enginetest.NewMock(engine.NameAEAP)
	orch := newTestOrchestrator(t, 0, whisper, aeap)

	result := orch.Compare(context.Background(), "/tmp/audio.wav", "en", engine.ModeBoth)

	require.Len(t, result, 2)
	require.Contains(t, result, engine.NameWhisper)
	require.Contains(t, result, engine.NameAEAP)
	assert.False(t, result.AllFailed())

	for name, outcome := range result {
		require.Nil(t, outcome.Err)
		assert.Equal(t, name, outcome.Result.Engine)
		assert.Equal(t, "this is a mock transcription", outcome.Result.Text)
		assert.Greater(t, outcome.Result.ProcessingTime, time.Duration(0))
	}
}

func TestCompareOneEngineFailsOtherSurvives(t *testing.T) {
	whisper := enginetest.NewMock(engine.NameWhisper)
	aeap := enginetest.NewMock(engine.NameAEAP)
	aeap.Err = engine.NewError(engine.CodeNetworkError, engine.NameAEAP, "relay unreachable")
	orch := newTestOrchestrator(t, 0, whisper, aeap)

	result := orch.Compare(context.Background(), "/tmp/audio.wav", "", engine.ModeBoth)

	require.Len(t, result, 2)
	assert.False(t, result.AllFailed())

	require.Nil(t, result[engine.NameWhisper].Err)
	require.NotNil(t, result[engine.NameAEAP].Err)
	assert.Equal(t, engine.CodeNetworkError, result[engine.NameAEAP].Err.Code)
	assert.Nil(t, result[engine.NameAEAP].Result)
}

func TestCompareAllFailed(t *testing.T) {
	whisper := enginetest.NewMock(engine.NameWhisper)
	whisper.Err = engine.NewError(engine.CodeEmptyResult, engine.NameWhisper, "no text")
	aeap := enginetest.NewMock(engine.NameAEAP)
	aeap.Err = engine.NewError(engine.CodeAuthError, engine.NameAEAP, "key rejected")
	orch := newTestOrchestrator(t, 0, whisper, aeap)

	result := orch.Compare(context.Background(), "/tmp/audio.wav", "", engine.ModeBoth)

	assert.True(t, result.AllFailed())
	assert.Equal(t, engine.CodeEmptyResult, result[engine.NameWhisper].Err.Code)
	assert.Equal(t, engine.CodeAuthError, result[engine.NameAEAP].Err.Code)
}

func TestCompareModeSelectsEngines(t *testing.T) {
	whisper := enginetest.NewMock(engine.NameWhisper)
	aeap := enginetest.NewMock(engine.NameAEAP)
	orch := newTestOrchestrator(t, 0, whisper, aeap)

	result := orch.Compare(context.Background(), "/tmp/audio.wav", "", engine.ModeLocal)

	require.Len(t, result, 1)
	require.Contains(t, result, engine.NameWhisper)
	assert.Equal(t, 0, aeap.CallCount())
}

func TestCompareTimeoutBecomesBackendTimeout(t *testing.T) {
	slow := enginetest.NewMock(engine.NameAEAP)
	slow.Latency = 500 * time.Millisecond
	orch := newTestOrchestrator(t, 50*time.Millisecond, slow)

	result := orch.Compare(context.Background(), "/tmp/audio.wav", "", engine.ModeCloud)

	require.NotNil(t, result[engine.NameAEAP].Err)
	assert.Equal(t, engine.CodeTimeout, result[engine.NameAEAP].Err.Code)
}

func TestCompareUnknownEngineGetsErrorSlot(t *testing.T) {
	whisper := enginetest.NewMock(engine.NameWhisper)
	orch := newTestOrchestrator(t, 0, whisper)

	// BOTH mode selects the relay engine too, which was never registered.
	result := orch.Compare(context.Background(), "/tmp/audio.wav", "", engine.ModeBoth)

	require.Len(t, result, 2)
	require.Nil(t, result[engine.NameWhisper].Err)
	require.NotNil(t, result[engine.NameAEAP].Err)
	assert.Equal(t, engine.CodeInternal, result[engine.NameAEAP].Err.Code)
}

type panickyEngine struct {
	enginetest.MockEngine
}

func (p *panickyEngine) Transcribe(ctx context.Context, req *engine.Request) (*engine.Result, error) {
	panic("model blew up")
}

func TestComparePanicIsolated(t *testing.T) {
	registry := engine.NewRegistry()
	require.NoError(t, registry.Add(engine.NameWhisper, &panickyEngine{}))
	require.NoError(t, registry.Add(engine.NameAEAP, enginetest.NewMock(engine.NameAEAP)))
	orch := New(registry, metrics.New(), zap.NewNop(), 0)

	result := orch.Compare(context.Background(), "/tmp/audio.wav", "", engine.ModeBoth)

	require.NotNil(t, result[engine.NameWhisper].Err)
	assert.Equal(t, engine.CodeInternal, result[engine.NameWhisper].Err.Code)
	require.Nil(t, result[engine.NameAEAP].Err)
}

func TestTranscribeSingleEngine(t *testing.T) {
	whisper := enginetest.NewMock(engine.NameWhisper)
	orch := newTestOrchestrator(t, 0, whisper)

	result, err := orch.Transcribe(context.Background(), engine.NameWhisper, "/tmp/audio.wav", "zh")
	require.NoError(t, err)
	assert.Equal(t, engine.NameWhisper, result.Engine)

	calls := whisper.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "zh", calls[0].Language)
}

package whisper

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeInstall lays down an executable stub and an empty model file so the
// transcriber's file checks pass without whisper.cpp installed.
func fakeInstall(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	binary := filepath.Join(dir, "whisper-cli")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))
	model := filepath.Join(dir, "ggml-base.bin")
	require.NoError(t, os.WriteFile(model, []byte("ggml"), 0o644))
	return Config{BinaryPath: binary, ModelPath: model}
}

const sampleOutput = `{
	"result": {"language": "en"},
	"transcription": [
		{"offsets": {"from": 0, "to": 2500}, "text": " Hello there."},
		{"offsets": {"from": 2500, "to": 4200}, "text": " How are you?"},
		{"offsets": {"from": 4200, "to": 4200}, "text": "   "}
	]
}`

func TestParseOutput(t *testing.T) {
	result, err := ParseOutput([]byte(sampleOutput))
	require.NoError(t, err)

	assert.Equal(t, "en", result.Language)
	assert.Equal(t, "Hello there. How are you?", result.Text)

	require.Len(t, result.Segments, 2, "blank segments are dropped")
	assert.Equal(t, "Hello there.", result.Segments[0].Text)
	assert.Equal(t, 0.0, result.Segments[0].Start)
	assert.Equal(t, 2.5, result.Segments[0].End)
	assert.Equal(t, 2.5, result.Segments[1].Start)
	assert.Equal(t, 4.2, result.Segments[1].End)
}

func TestParseOutputEmptyTranscription(t *testing.T) {
	result, err := ParseOutput([]byte(`{"result": {"language": "en"}, "transcription": []}`))
	require.NoError(t, err)
	assert.Empty(t, result.Text)
	assert.Empty(t, result.Segments)
}

func TestParseOutputMalformed(t *testing.T) {
	_, err := ParseOutput([]byte(`not json`))
	assert.Error(t, err)
}

func TestNewDerivesModelPath(t *testing.T) {
	tr := New(Config{ModelDir: "/models", ModelSize: "small"}, zap.NewNop())
	assert.Equal(t, "/models/ggml-small.bin", tr.config.ModelPath)

	tr = New(Config{ModelDir: "/models"}, zap.NewNop())
	assert.Equal(t, "/models/ggml-base.bin", tr.config.ModelPath)

	tr = New(Config{ModelPath: "/custom/model.bin", ModelDir: "/models"}, zap.NewNop())
	assert.Equal(t, "/custom/model.bin", tr.config.ModelPath)
}

func TestLoadedBeforeFirstUse(t *testing.T) {
	tr := New(Config{BinaryPath: "/does/not/exist", ModelPath: "/does/not/exist.bin"}, zap.NewNop())
	assert.False(t, tr.Loaded())

	err := tr.HealthCheck(context.Background())
	assert.Error(t, err)
	assert.False(t, tr.Loaded())
}

func TestHealthCheckDoesNotForceLoad(t *testing.T) {
	tr := New(fakeInstall(t), zap.NewNop())

	// Health probes verify reachability only; an idle service stays
	// unloaded no matter how often it is polled.
	for i := 0; i < 3; i++ {
		require.NoError(t, tr.HealthCheck(context.Background()))
		assert.False(t, tr.Loaded())
	}

	require.NoError(t, tr.ensureLoaded())
	assert.True(t, tr.Loaded())
}

func TestLoadedConcurrentWithLoad(t *testing.T) {
	tr := New(fakeInstall(t), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = tr.ensureLoaded()
		}()
		go func() {
			defer wg.Done()
			_ = tr.Loaded()
			_ = tr.HealthCheck(context.Background())
		}()
	}
	wg.Wait()

	assert.True(t, tr.Loaded())
}

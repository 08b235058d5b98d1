package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"speechbench/internal/app/audio"
	"speechbench/internal/app/engine"
)

// ModelSizes are the whisper.cpp model variants the CLI accepts.
var ModelSizes = []string{"tiny", "base", "small", "medium", "large"}

// Config configures the local whisper.cpp engine.
type Config struct {
	// BinaryPath is the whisper.cpp CLI binary (whisper-cli or main).
	BinaryPath string
	// ModelPath points at a ggml model file. When empty it is derived from
	// ModelDir and ModelSize.
	ModelPath string
	ModelDir  string
	ModelSize string
	// Threads caps inference threads; 0 leaves the binary's default.
	Threads int
}

// Transcriber runs whisper.cpp inference on the local machine. The model
// handle is verified lazily exactly once; inference itself is stateless, so
// concurrent Transcribe calls need no further locking.
type Transcriber struct {
	config Config
	logger *zap.Logger

	loadOnce sync.Once
	loadErr  error
	loaded   atomic.Bool
}

// New creates a local whisper transcriber. The model is not touched until
// the first Transcribe.
func New(config Config, logger *zap.Logger) *Transcriber {
	if config.ModelSize == "" {
		config.ModelSize = "base"
	}
	if config.ModelPath == "" && config.ModelDir != "" {
		config.ModelPath = filepath.Join(config.ModelDir,
			fmt.Sprintf("ggml-%s.bin", config.ModelSize))
	}
	return &Transcriber{config: config, logger: logger}
}

// Loaded reports whether the model handle has been initialized. The health
// endpoint surfaces this as whisper_loaded, concurrently with Transcribe.
func (t *Transcriber) Loaded() bool {
	return t.loaded.Load()
}

// verify checks that the binary and model file are reachable. It never
// touches the lazy-load state, so health probes can call it freely.
func (t *Transcriber) verify() error {
	if t.config.BinaryPath == "" {
		return fmt.Errorf("whisper binary path not configured")
	}
	if _, err := exec.LookPath(t.config.BinaryPath); err != nil {
		return fmt.Errorf("whisper binary not found: %w", err)
	}
	if t.config.ModelPath == "" {
		return fmt.Errorf("whisper model path not configured")
	}
	if _, err := os.Stat(t.config.ModelPath); err != nil {
		return fmt.Errorf("whisper model not found: %w", err)
	}
	return nil
}

// ensureLoaded verifies the binary and model file once. whisper.cpp maps the
// model per process invocation, so "loading" here is validating the handle
// the first caller pays for.
func (t *Transcriber) ensureLoaded() error {
	t.loadOnce.Do(func() {
		if err := t.verify(); err != nil {
			t.loadErr = err
			return
		}
		t.loaded.Store(true)
		t.logger.Info("whisper model ready",
			zap.String("model", t.config.ModelPath),
			zap.String("binary", t.config.BinaryPath))
	})
	return t.loadErr
}

// Transcribe runs whisper.cpp on the input and parses its JSON output.
// Language is auto-detected when the hint is empty. Segments are
// phrase-level; whisper.cpp reports no per-segment confidence, so it stays
// 0.0.
func (t *Transcriber) Transcribe(ctx context.Context, req *engine.Request) (*engine.Result, error) {
	if err := t.ensureLoaded(); err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameWhisper, "%v", err)
	}

	inputPath := req.AudioPath

	// whisper.cpp only ingests 16-bit WAV; anything else goes through the
	// normalizer first.
	canonical, err := audio.IsCanonical(ctx, inputPath)
	if err != nil {
		return nil, engine.NewError(engine.CodeConversionError, engine.NameWhisper,
			"probe input: %v", err)
	}
	if !canonical {
		normalized, err := audio.Normalize(ctx, inputPath)
		if err != nil {
			return nil, err
		}
		defer normalized.Cleanup(t.logger)
		inputPath = normalized.Path
	}

	language := req.Language
	if language == "" {
		language = "auto"
	}

	outputBase := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "_out"
	defer os.Remove(outputBase + ".json")

	args := []string{
		"-m", t.config.ModelPath,
		"-l", language,
		"-oj",
		"-of", outputBase,
		"-np",
		"-f", inputPath,
	}
	if t.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(t.config.Threads))
	}

	cmd := exec.CommandContext(ctx, t.config.BinaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, engine.NewError(engine.CodeTimeout, engine.NameWhisper,
				"inference cancelled: %v", ctx.Err())
		}
		return nil, engine.NewError(engine.CodeInternal, engine.NameWhisper,
			"whisper.cpp failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	output, err := os.ReadFile(outputBase + ".json")
	if err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameWhisper,
			"read whisper output: %v", err)
	}

	result, err := ParseOutput(output)
	if err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameWhisper, "%v", err)
	}
	if result.Text == "" {
		return nil, engine.NewError(engine.CodeEmptyResult, engine.NameWhisper,
			"inference produced no text")
	}

	if duration, err := audio.Duration(ctx, req.AudioPath); err == nil {
		result.AudioDuration = duration
	}
	result.Engine = engine.NameWhisper
	return result, nil
}

// Info implements engine.Engine.
func (t *Transcriber) Info() engine.Info {
	return engine.Info{
		Name:              engine.NameWhisper,
		DisplayName:       "Whisper (local)",
		Local:             true,
		SupportedFormats:  []string{"wav", "mp3", "m4a", "flac", "ogg", "webm"},
		WordLevelSegments: false,
		DetectsLanguage:   true,
		RequiresCanonical: false,
	}
}

// HealthCheck implements engine.Engine. It reports whether the binary and
// model are reachable without forcing the lazy load; an idle service stays
// unloaded no matter how often it is probed.
func (t *Transcriber) HealthCheck(ctx context.Context) error {
	return t.verify()
}

// whisperOutput mirrors the whisper.cpp -oj file layout.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// ParseOutput converts whisper.cpp JSON output to a Result. Offsets arrive
// in milliseconds.
func ParseOutput(data []byte) (*engine.Result, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	result := &engine.Result{
		Language: out.Result.Language,
		Segments: make([]engine.Segment, 0, len(out.Transcription)),
	}

	var parts []string
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		result.Segments = append(result.Segments, engine.Segment{
			Text:  text,
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
		})
	}
	result.Text = strings.Join(parts, " ")

	if len(result.Segments) > 0 {
		result.Confidence = result.Segments[0].Confidence
	}
	return result, nil
}

package audio

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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"speechbench/internal/app/engine"
	"speechbench/internal/app/model"
)

// Canonical PCM parameters required by the cloud engine.
const (
	CanonicalSampleRate = 16000
	CanonicalChannels   = 1
	CanonicalCodec      = "pcm_s16le"
)

// Duration returns the audio length in seconds via ffprobe.
func Duration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration parse: %w", err)
	}
	return duration, nil
}

// Probe inspects the stream headers of an audio file.
func Probe(ctx context.Context, filePath string) (*model.FFProbeOutput, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "quiet",
		"-print_format", "json", "-show_streams", filePath)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	var probed model.FFProbeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("ffprobe output parse: %w", err)
	}
	return &probed, nil
}

// IsCanonical reports whether the file already carries a mono 16 kHz s16le
// audio stream.
func IsCanonical(ctx context.Context, filePath string) (bool, error) {
	probed, err := Probe(ctx, filePath)
	if err != nil {
		return false, err
	}
	for _, stream := range probed.Streams {
		if stream.CodecType == "audio" &&
			stream.CodecName == CanonicalCodec &&
			stream.SampleRate == CanonicalSampleRate &&
			stream.Channels == CanonicalChannels {
			return true, nil
		}
	}
	return false, nil
}

// Normalized is the normalizer's scratch artifact. When the input was already
// canonical the path aliases the input and Cleanup is a no-op, so the caller
// never double-deletes a pass-through path.
type Normalized struct {
	Path       string
	SampleRate int
	Channels   int
	BitDepth   int

	converted bool
}

// Cleanup removes the converted scratch file, if one was produced. Removal
// failure is logged, never returned.
func (n *Normalized) Cleanup(logger *zap.Logger) {
	if n == nil || !n.converted {
		return
	}
	if err := os.Remove(n.Path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove normalized scratch file",
			zap.String("path", n.Path), zap.Error(err))
	}
}

// Normalize converts arbitrary input audio into canonical PCM WAV. Canonical
// input passes through unchanged. On conversion failure the original scratch
// file is left in place for the caller to clean up.
func Normalize(ctx context.Context, inputPath string) (*Normalized, error) {
	canonical, err := IsCanonical(ctx, inputPath)
	if err != nil {
		return nil, engine.NewError(engine.CodeConversionError, "",
			"failed to probe audio: %v", err)
	}
	if canonical {
		return &Normalized{
			Path:       inputPath,
			SampleRate: CanonicalSampleRate,
			Channels:   CanonicalChannels,
			BitDepth:   16,
		}, nil
	}

	// Unique per call: concurrent engines may normalize the same input, and
	// each must own its own scratch artifact.
	outputPath := fmt.Sprintf("%s_pcm16k_%s.wav",
		strings.TrimSuffix(inputPath, filepath.Ext(inputPath)),
		strings.Split(uuid.New().String(), "-")[0])

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", inputPath, "-vn",
		"-acodec", CanonicalCodec,
		"-ar", strconv.Itoa(CanonicalSampleRate),
		"-ac", strconv.Itoa(CanonicalChannels),
		outputPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// ffmpeg may leave a partial output behind
		os.Remove(outputPath)
		return nil, engine.NewError(engine.CodeConversionError, "",
			"ffmpeg conversion failed: %v: %s", err, lastLine(stderr.String()))
	}

	return &Normalized{
		Path:       outputPath,
		SampleRate: CanonicalSampleRate,
		Channels:   CanonicalChannels,
		BitDepth:   16,
		converted:  true,
	}, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

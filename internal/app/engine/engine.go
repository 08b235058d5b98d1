package engine

import (
	"context"
	"time"
)

// Engine names used as ComparisonResult keys and metric labels.
const (
	NameWhisper = "whisper"
	NameAEAP    = "asterisk-aeap"
	NameOpenAI  = "openai"
)

// Engine is the capability contract shared by every transcription backend.
// Implementations must be safe for concurrent use: the orchestrator may call
// Transcribe from multiple goroutines at once.
type Engine interface {
	// Transcribe converts the audio file at req.AudioPath to text. Blocking;
	// honours ctx cancellation and deadlines.
	Transcribe(ctx context.Context, req *Request) (*Result, error)

	// Info returns static metadata about the backend.
	Info() Info

	// HealthCheck verifies the backend is reachable and usable.
	HealthCheck(ctx context.Context) error
}

// Request carries one transcription call's input.
type Request struct {
	// AudioPath is a local scratch file. Cloud engines require canonical PCM
	// (mono 16 kHz s16le WAV); the local engine accepts a broader set.
	AudioPath string

	// Language is an optional hint (ISO language or language-region code).
	// Empty means auto-detect for engines that support it; engines without
	// detection substitute their own default.
	Language string
}

// Segment is one timed unit of a transcript. Granularity is engine-specific:
// the local engine emits phrase-level segments, the cloud engine word-level
// ones. Callers must not assume uniform granularity or comparable confidence
// scales across engines.
type Segment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Result is the unified transcription outcome.
type Result struct {
	// Text is the full transcript, newline-joined when the backend returned
	// multiple alternatives.
	Text string `json:"text"`

	// Segments are ordered chronologically; ties keep input order.
	Segments []Segment `json:"segments"`

	// Confidence is backend-reported, or the first segment's confidence when
	// the backend reports none. Absent confidence is 0.0.
	Confidence float64 `json:"confidence"`

	// Language is the detected or requested language code.
	Language string `json:"language"`

	// AudioDuration is the source audio length in seconds, when known.
	AudioDuration float64 `json:"audio_duration,omitempty"`

	// ProcessingTime is wall-clock time for this engine's call, stamped by
	// the orchestrator so it is attributed per engine.
	ProcessingTime time.Duration `json:"-"`

	// Engine is the originating engine name.
	Engine string `json:"engine"`
}

// Info describes an engine's capabilities.
type Info struct {
	Name              string   `json:"name"`
	DisplayName       string   `json:"display_name"`
	Local             bool     `json:"local"`
	SupportedFormats  []string `json:"supported_formats"`
	WordLevelSegments bool     `json:"word_level_segments"`
	DetectsLanguage   bool     `json:"detects_language"`
	RequiresCanonical bool     `json:"requires_canonical_pcm"`
	DefaultLanguage   string   `json:"default_language,omitempty"`
}

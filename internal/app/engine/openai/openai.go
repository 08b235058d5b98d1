package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/samber/lo"

	"speechbench/internal/app/engine"
)

// openaiSegment is an alias for the anonymous element type of
// goopenai.AudioResponse.Segments, which the library does not name.
type openaiSegment = struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	Transient        bool    `json:"transient"`
}

// Transcriber is the supplementary remote engine backed by the OpenAI
// Whisper API. It is registered only when an API key is configured and sits
// outside the LOCAL/CLOUD/BOTH modes.
type Transcriber struct {
	client *goopenai.Client
	model  string
}

// New creates an OpenAI Whisper API transcriber. The client handle is
// long-lived and authenticated once.
func New(client *goopenai.Client, model string) *Transcriber {
	if model == "" {
		model = string(goopenai.Whisper1)
	}
	return &Transcriber{client: client, model: model}
}

// Transcribe calls the OpenAI transcription endpoint with verbose JSON so
// segment timing comes back.
func (t *Transcriber) Transcribe(ctx context.Context, req *engine.Request) (*engine.Result, error) {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameOpenAI,
			"input file not readable: %v", err)
	}

	audioReq := goopenai.AudioRequest{
		Model:    t.model,
		FilePath: req.AudioPath,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
		Language: req.Language,
	}

	resp, err := t.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		return nil, t.classifyError(err)
	}

	if strings.TrimSpace(resp.Text) == "" && len(resp.Segments) == 0 {
		return nil, engine.NewError(engine.CodeEmptyResult, engine.NameOpenAI,
			"backend returned no recognition results")
	}

	segments := lo.Map(resp.Segments, func(s openaiSegment, _ int) engine.Segment {
		return engine.Segment{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
			// avg_logprob is in (-inf, 0]; exp maps it into (0, 1] as a
			// rough confidence proxy
			Confidence: logprobToConfidence(s.AvgLogprob),
		}
	})

	result := &engine.Result{
		Text:          resp.Text,
		Segments:      segments,
		Language:      resp.Language,
		AudioDuration: resp.Duration,
		Engine:        engine.NameOpenAI,
	}
	if len(segments) > 0 {
		result.Confidence = segments[0].Confidence
	}
	return result, nil
}

// Info implements engine.Engine.
func (t *Transcriber) Info() engine.Info {
	return engine.Info{
		Name:              engine.NameOpenAI,
		DisplayName:       "OpenAI Whisper API",
		Local:             false,
		SupportedFormats:  []string{"wav", "mp3", "m4a", "webm"},
		WordLevelSegments: false,
		DetectsLanguage:   true,
		RequiresCanonical: false,
	}
}

// HealthCheck implements engine.Engine.
func (t *Transcriber) HealthCheck(ctx context.Context) error {
	if _, err := t.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai API unreachable: %w", err)
	}
	return nil
}

func (t *Transcriber) classifyError(err error) *engine.Error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return engine.NewError(engine.CodeAuthError, engine.NameOpenAI,
				"API key rejected: %v", apiErr.Message)
		case 429:
			e := engine.NewError(engine.CodeNetworkError, engine.NameOpenAI,
				"rate limited: %v", apiErr.Message)
			e.Retryable = true
			return e
		case 400, 413:
			return engine.NewError(engine.CodeUnsupportedFormat, engine.NameOpenAI,
				"rejected audio: %v", apiErr.Message)
		}
	}
	e := engine.NewError(engine.CodeNetworkError, engine.NameOpenAI,
		"transcription call failed: %v", err)
	e.Retryable = true
	return e
}

func logprobToConfidence(avgLogprob float64) float64 {
	if avgLogprob >= 0 {
		return 1.0
	}
	if avgLogprob < -10 {
		return 0.0
	}
	return math.Exp(avgLogprob)
}

package dto

import (
	"github.com/samber/lo"

	apierrors "speechbench/internal/api/errors"
	"speechbench/internal/app/engine"
	"speechbench/internal/app/orchestrator"
)

// UploadForm carries the non-file fields of POST /upload.
type UploadForm struct {
	Language string `form:"language"`
}

// TranscribeForm carries the non-file fields of POST /transcribe.
type TranscribeForm struct {
	Language string `form:"language"`
}

// CompareForm carries the non-file fields of POST /compare.
type CompareForm struct {
	Language string `form:"language"`
	Mode     string `form:"mode" binding:"omitempty,oneof=local cloud both"`
}

// Validate implements the domain validation hook.
func (f *CompareForm) Validate() error {
	if _, err := engine.ParseMode(f.Mode); err != nil {
		return apierrors.NewValidationError(err.Error())
	}
	return nil
}

// PhraseSegment is the local engine's segment shape.
type PhraseSegment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// WordSegment is the cloud engine's segment shape.
type WordSegment struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// UploadResponse is the local-only transcription response.
type UploadResponse struct {
	Success        bool            `json:"success"`
	Text           string          `json:"text"`
	Language       string          `json:"language"`
	Segments       []PhraseSegment `json:"segments"`
	AudioDuration  float64         `json:"audio_duration"`
	ProcessingTime float64         `json:"processing_time"`
	SpeedRatio     float64         `json:"speed_ratio"`
}

// NewUploadResponse maps a local engine result onto the upload wire shape.
func NewUploadResponse(res *engine.Result) UploadResponse {
	processing := res.ProcessingTime.Seconds()
	speedRatio := 0.0
	if processing > 0 {
		speedRatio = res.AudioDuration / processing
	}
	return UploadResponse{
		Success:  true,
		Text:     res.Text,
		Language: res.Language,
		Segments: lo.Map(res.Segments, func(s engine.Segment, _ int) PhraseSegment {
			return PhraseSegment{Text: s.Text, Start: s.Start, End: s.End, Confidence: s.Confidence}
		}),
		AudioDuration:  res.AudioDuration,
		ProcessingTime: processing,
		SpeedRatio:     speedRatio,
	}
}

// TranscribeResponse is the cloud-relay transcription response.
type TranscribeResponse struct {
	Success        bool          `json:"success"`
	Text           string        `json:"text"`
	Confidence     float64       `json:"confidence"`
	Segments       []WordSegment `json:"segments"`
	ProcessingTime float64       `json:"processing_time"`
	Language       string        `json:"language"`
	Engine         string        `json:"engine"`
}

// NewTranscribeResponse maps a cloud engine result onto the transcribe wire
// shape.
func NewTranscribeResponse(res *engine.Result) TranscribeResponse {
	return TranscribeResponse{
		Success:    true,
		Text:       res.Text,
		Confidence: res.Confidence,
		Segments: lo.Map(res.Segments, func(s engine.Segment, _ int) WordSegment {
			return WordSegment{Word: s.Text, Start: s.Start, End: s.End, Confidence: s.Confidence}
		}),
		ProcessingTime: res.ProcessingTime.Seconds(),
		Language:       res.Language,
		Engine:         res.Engine,
	}
}

// CompareEntry is one engine's slot in a comparison response: result fields
// on success, error plus code on failure. Confidence scales are engine
// specific and deliberately not normalized. Numeric fields always serialize;
// a confidence of 0.0 is a legitimate measurement, not an absent one.
type CompareEntry struct {
	Text           string          `json:"text,omitempty"`
	Language       string          `json:"language,omitempty"`
	Confidence     float64         `json:"confidence"`
	Segments       []PhraseSegment `json:"segments,omitempty"`
	WordSegments   []WordSegment   `json:"word_segments,omitempty"`
	AudioDuration  float64         `json:"audio_duration"`
	ProcessingTime float64         `json:"processing_time"`
	SpeedRatio     float64         `json:"speed_ratio"`
	Error          string          `json:"error,omitempty"`
	Code           string          `json:"code,omitempty"`
}

// CompareResponse is the multi-engine comparison response.
type CompareResponse struct {
	Success bool                    `json:"success"`
	Results map[string]CompareEntry `json:"results"`
}

// NewCompareResponse maps a ComparisonResult onto the wire. success is true
// unless every selected engine failed.
func NewCompareResponse(cr orchestrator.ComparisonResult, wordLevel func(name string) bool) CompareResponse {
	results := make(map[string]CompareEntry, len(cr))
	for name, outcome := range cr {
		if outcome.Err != nil {
			results[name] = CompareEntry{
				Error: outcome.Err.Message,
				Code:  outcome.Err.Code,
			}
			continue
		}

		res := outcome.Result
		entry := CompareEntry{
			Text:           res.Text,
			Language:       res.Language,
			Confidence:     res.Confidence,
			AudioDuration:  res.AudioDuration,
			ProcessingTime: res.ProcessingTime.Seconds(),
		}
		if entry.ProcessingTime > 0 {
			entry.SpeedRatio = res.AudioDuration / entry.ProcessingTime
		}
		if wordLevel != nil && wordLevel(name) {
			entry.WordSegments = lo.Map(res.Segments, func(s engine.Segment, _ int) WordSegment {
				return WordSegment{Word: s.Text, Start: s.Start, End: s.End, Confidence: s.Confidence}
			})
		} else {
			entry.Segments = lo.Map(res.Segments, func(s engine.Segment, _ int) PhraseSegment {
				return PhraseSegment{Text: s.Text, Start: s.Start, End: s.End, Confidence: s.Confidence}
			})
		}
		results[name] = entry
	}

	return CompareResponse{Success: !cr.AllFailed(), Results: results}
}

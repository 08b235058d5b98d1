package openai

import (
	"math"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"speechbench/internal/app/engine"
)

func TestLogprobToConfidence(t *testing.T) {
	assert.Equal(t, 1.0, logprobToConfidence(0))
	assert.Equal(t, 1.0, logprobToConfidence(0.5))
	assert.Equal(t, 0.0, logprobToConfidence(-11))
	assert.InDelta(t, math.Exp(-0.3), logprobToConfidence(-0.3), 1e-9)
}

func TestNewDefaultsModel(t *testing.T) {
	client := goopenai.NewClient("test-key")

	tr := New(client, "")
	assert.Equal(t, string(goopenai.Whisper1), tr.model)

	tr = New(client, "whisper-large")
	assert.Equal(t, "whisper-large", tr.model)
}

func TestClassifyError(t *testing.T) {
	tr := New(goopenai.NewClient("test-key"), "")

	tests := []struct {
		name          string
		status        int
		expectedCode  string
		expectedRetry bool
	}{
		{name: "unauthorized", status: 401, expectedCode: engine.CodeAuthError},
		{name: "forbidden", status: 403, expectedCode: engine.CodeAuthError},
		{name: "rate_limited", status: 429, expectedCode: engine.CodeNetworkError, expectedRetry: true},
		{name: "bad_audio", status: 400, expectedCode: engine.CodeUnsupportedFormat},
		{name: "too_large", status: 413, expectedCode: engine.CodeUnsupportedFormat},
		{name: "server_error", status: 500, expectedCode: engine.CodeNetworkError, expectedRetry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tr.classifyError(&goopenai.APIError{
				HTTPStatusCode: tt.status,
				Message:        "nope",
			})
			assert.Equal(t, tt.expectedCode, e.Code)
			assert.Equal(t, tt.expectedRetry, e.Retryable)
			assert.Equal(t, engine.NameOpenAI, e.Engine)
		})
	}
}

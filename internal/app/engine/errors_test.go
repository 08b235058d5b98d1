package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedCode   string
		expectedEngine string
	}{
		{
			name:           "typed_error_passes_through",
			err:            NewError(CodeAuthError, "asterisk-aeap", "key rejected"),
			expectedCode:   CodeAuthError,
			expectedEngine: "asterisk-aeap",
		},
		{
			name:           "wrapped_typed_error_unwraps",
			err:            fmt.Errorf("call failed: %w", NewError(CodeTimeout, "whisper", "deadline")),
			expectedCode:   CodeTimeout,
			expectedEngine: "whisper",
		},
		{
			name:           "foreign_error_becomes_internal",
			err:            errors.New("boom"),
			expectedCode:   CodeInternal,
			expectedEngine: "whisper",
		},
		{
			name:           "missing_engine_filled_in",
			err:            NewError(CodeEmptyResult, "", "no text"),
			expectedCode:   CodeEmptyResult,
			expectedEngine: "whisper",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := AsError(tt.err, "whisper")
			assert.Equal(t, tt.expectedCode, e.Code)
			assert.Equal(t, tt.expectedEngine, e.Engine)
		})
	}
}

func TestAsErrorNil(t *testing.T) {
	assert.Nil(t, AsError(nil, "whisper"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeOversized, CodeOf(NewError(CodeOversized, "", "too big")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

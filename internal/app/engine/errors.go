package engine

import (
	"errors"
	"fmt"
)

// Error codes shared across the harness.
const (
	CodeInputMissing      = "input_missing"
	CodeOversized         = "oversized"
	CodeUnsupportedFormat = "unsupported_format"
	CodeConversionError   = "audio_conversion_error"
	CodeEmptyResult       = "transcription_empty"
	CodeAuthError         = "backend_auth_error"
	CodeNetworkError      = "backend_network_error"
	CodeTimeout           = "backend_timeout"
	CodeInternal          = "internal_unexpected"
)

// Error is the engine-level error record. In BOTH mode a failed engine's
// Error becomes that engine's slot in the ComparisonResult instead of failing
// the whole request.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"error"`
	Engine    string `json:"engine,omitempty"`
	Retryable bool   `json:"-"`
}

func (e *Error) Error() string {
	if e.Engine != "" {
		return fmt.Sprintf("%s: %s: %s", e.Engine, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds an engine error with the given code.
func NewError(code, engineName, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Engine:  engineName,
	}
}

// AsError unwraps err into an *Error, wrapping unknown errors as
// internal_unexpected so every failure carries a code.
func AsError(err error, engineName string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Engine == "" {
			e.Engine = engineName
		}
		return e
	}
	return &Error{
		Code:    CodeInternal,
		Message: err.Error(),
		Engine:  engineName,
	}
}

// CodeOf returns the error code, or internal_unexpected for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

package errors

import (
	"net/http"

	"speechbench/internal/app/engine"
)

// ErrorKind classifies API errors for status mapping.
type ErrorKind string

const (
	KindBadRequest      ErrorKind = "bad_request"
	KindValidation      ErrorKind = "validation"
	KindPayloadTooLarge ErrorKind = "payload_too_large"
	KindBadGateway      ErrorKind = "bad_gateway"
	KindGatewayTimeout  ErrorKind = "gateway_timeout"
	KindInternal        ErrorKind = "internal"
)

// APIError is the structured JSON error body.
type APIError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus maps the error kind to a response status.
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest, KindValidation:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindBadGateway:
		return http.StatusBadGateway
	case KindGatewayTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewBadRequestError creates a client error.
func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message}
}

// NewInternalError creates a server error.
func NewInternalError(message string) *APIError {
	return &APIError{Kind: KindInternal, Message: message}
}

// FromEngineError maps an engine error record to its HTTP representation:
// input problems are client errors, backend auth/network failures are bad
// gateway, backend timeouts are gateway timeout.
func FromEngineError(e *engine.Error) *APIError {
	kind := KindInternal
	switch e.Code {
	case engine.CodeInputMissing, engine.CodeUnsupportedFormat, engine.CodeConversionError:
		kind = KindBadRequest
	case engine.CodeOversized:
		kind = KindPayloadTooLarge
	case engine.CodeAuthError, engine.CodeNetworkError, engine.CodeEmptyResult:
		kind = KindBadGateway
	case engine.CodeTimeout:
		kind = KindGatewayTimeout
	}
	return &APIError{Kind: kind, Message: e.Message, Code: e.Code}
}

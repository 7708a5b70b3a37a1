package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

/**
 * Structured errors for the prescription OCR adapter
 *
 * Every failure inside the vision and relay stages is reported as a
 * ProcessingError carrying one ErrorCode. The public operations collapse
 * these into value-level results; the code survives in logs and in the
 * relay's error return.
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Vision stage
	ErrorImageEncodingFailed ErrorCode = "IMAGE_ENCODING_FAILED"
	ErrorDetectionFailed     ErrorCode = "DETECTION_FAILED"

	// Relay stage
	ErrorRelayTimeout   ErrorCode = "RELAY_TIMEOUT"
	ErrorRelayFailed    ErrorCode = "RELAY_FAILED"
	ErrorRelayMalformed ErrorCode = "RELAY_MALFORMED"
)

// ProcessingError represents a structured processing error
type ProcessingError struct {
	Code      ErrorCode
	Message   string
	RequestID string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// Is matches another ProcessingError by code, so errors.Is(err, &ProcessingError{Code: X}) works.
func (e *ProcessingError) Is(target error) bool {
	t, ok := target.(*ProcessingError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first ProcessingError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var pe *ProcessingError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Factory functions for common errors

func NewImageEncodingError(requestID string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorImageEncodingFailed,
		Message:   "Failed to read and encode image",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewDetectionFailedError(requestID string, statusCode int, cause error) *ProcessingError {
	e := &ProcessingError{
		Code:      ErrorDetectionFailed,
		Message:   "Document text detection failed",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
	if statusCode != 0 {
		e.Message = fmt.Sprintf("Document text detection failed with status %d", statusCode)
		e.Details = map[string]interface{}{
			"status_code": statusCode,
		}
	}
	return e
}

func NewRelayTimeoutError(requestID string, timeout time.Duration, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorRelayTimeout,
		Message:   fmt.Sprintf("Backend parsing timed out after %v", timeout),
		RequestID: requestID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"timeout_duration": timeout.String(),
		},
		Cause: cause,
	}
}

func NewRelayFailedError(requestID string, statusCode int, cause error) *ProcessingError {
	e := &ProcessingError{
		Code:      ErrorRelayFailed,
		Message:   "Backend parsing request failed",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
	if statusCode != 0 {
		e.Message = fmt.Sprintf("Backend parsing returned status %d", statusCode)
		e.Details = map[string]interface{}{
			"status_code": statusCode,
		}
	}
	return e
}

func NewRelayMalformedError(requestID string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorRelayMalformed,
		Message:   "Backend parsing response could not be decoded",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// ToMap converts error to map for structured log output
func (e *ProcessingError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	if e.RequestID != "" {
		result["request_id"] = e.RequestID
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}

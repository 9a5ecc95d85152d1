// Package errors provides standardized error handling for the question
// answering pipeline. None of these errors propagate past the service
// boundary: each maps to a caveat attached to a best-effort answer.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeBoardConfigMissing ErrorCode = "BOARD_CONFIG_MISSING"
	ErrCodeUpstreamFetch      ErrorCode = "UPSTREAM_FETCH_FAILED"

	ErrCodeIntentParsingFailed ErrorCode = "INTENT_PARSING_FAILED"
	ErrCodeIntentAPITimeout    ErrorCode = "INTENT_API_TIMEOUT"
	ErrCodeSummaryFailed       ErrorCode = "LLM_SUMMARY_FAILED"
	ErrCodeSummaryTimeout      ErrorCode = "LLM_TIMEOUT"

	ErrCodeFieldParseFailed ErrorCode = "FIELD_PARSE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Caveat renders the error as the user-facing caveat string attached to a
// degraded response.
func (e *StandardError) Caveat() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

// NewBoardConfigMissingError signals that no board id is configured for the
// required data source. Not retryable: the answer is computed over an empty set.
func NewBoardConfigMissingError(source string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBoardConfigMissing,
		Message:   fmt.Sprintf("no board configured for %s; using empty data", source),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFetchError wraps a board service failure.
func NewUpstreamFetchError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFetch,
		Message:   fmt.Sprintf("failed to fetch %s records", source),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntentParsingFailedError wraps an AI intent provider failure.
func NewIntentParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentParsingFailed,
		Message:   "AI question interpretation unavailable; used keyword heuristics",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntentAPITimeoutError signals the intent provider exceeded its timeout.
func NewIntentAPITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentAPITimeout,
		Message:   "AI question interpretation timed out; used keyword heuristics",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSummaryFailedError wraps an AI summary provider failure.
func NewSummaryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSummaryFailed,
		Message:   "AI summary unavailable; using formatted results",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFieldParseFailedError reports that a semantic field could not be parsed
// for the majority of records. Single-record parse failures stay silent.
func NewFieldParseFailedError(field, source string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldParseFailed,
		Message:   fmt.Sprintf("most %s values on the %s board could not be parsed", field, source),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	se, ok := err.(*StandardError)
	return ok && se.Retryable
}

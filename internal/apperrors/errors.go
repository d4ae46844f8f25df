// Package apperrors defines the error taxonomy shared across the ranking pipeline.
package apperrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. Codes decide how a failure propagates:
// extraction problems are reported per file and the batch continues, while
// analysis problems abort the whole ranking run.
type Code string

const (
	// CodeUnsupportedFormat marks a file whose type is not recognized. The file
	// is skipped and the remaining files keep processing.
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// CodeExtractionFailed marks a recognized file that could not be decoded.
	// Reported per file, never fatal to the batch.
	CodeExtractionFailed Code = "EXTRACTION_FAILED"

	// CodeConfiguration marks a missing or invalid API credential. It blocks an
	// analysis run from starting at all.
	CodeConfiguration Code = "CONFIGURATION_ERROR"

	// CodeAnalysisFailed marks a failed completion call (network, quota,
	// service-side). Aborts the in-flight ranking run.
	CodeAnalysisFailed Code = "ANALYSIS_FAILED"

	// CodeMalformedResponse marks a completion response that does not conform
	// to the expected schema. Treated like CodeAnalysisFailed for batch aborts.
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
)

// Error is a coded application error. It wraps an optional cause so callers
// can use errors.Is/errors.As on the chain.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around a cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in the chain, or "" when the
// error carries no code.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether the error chain contains a coded error with the
// given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

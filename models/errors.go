package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeTimeout       = "SCRAPE_TIMEOUT"
	ErrCodeNavigation    = "NAVIGATION_FAILED"
	ErrCodeBrowserLaunch = "BROWSER_LAUNCH_FAILED"
	ErrCodeDOMRead       = "DOM_READ_FAILED"
	ErrCodeRender        = "RENDER_FAILED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// NewValidationError reports a malformed request. No browser resource is
// touched once one of these is produced.
func NewValidationError(message string) *ScrapeError {
	return &ScrapeError{Code: ErrCodeInvalidInput, Message: message}
}

// IsValidation reports whether err is (or wraps) a validation failure.
func IsValidation(err error) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.Code == ErrCodeInvalidInput
}

// ExtractionError is what the orchestrator returns for any failure after
// validation: launch, navigation, DOM reads, or anything unexpected. The
// API answers these with 200 and an ExtractionFailure body.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction of %s failed: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Code returns the underlying ScrapeError code, or ErrCodeInternal.
func (e *ExtractionError) Code() string {
	var se *ScrapeError
	if errors.As(e.Err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// Cause is the human-readable failure description sent to callers.
func (e *ExtractionError) Cause() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// ToFailure converts the error into its response body.
func (e *ExtractionError) ToFailure() *ExtractionFailure {
	return &ExtractionFailure{Error: e.Cause(), URL: e.URL}
}

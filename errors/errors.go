package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by the pipeline stage (or request concern) it came from.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindAcquisition
	KindExtraction
	KindTranscription
	KindSummaryDegradation
	KindNotFound
	KindBusy
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindAcquisition:
		return "acquisition_failure"
	case KindExtraction:
		return "extraction_failure"
	case KindTranscription:
		return "transcription_failure"
	case KindSummaryDegradation:
		return "summary_degradation"
	case KindNotFound:
		return "not_found"
	case KindBusy:
		return "busy"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// StatusCode maps the kind onto the HTTP status the shell answers with.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindAcquisition:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindBusy:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type AppError struct {
	Kind    Kind   `json:"-"`
	Op      string `json:"-"`
	Message string `json:"error"`
	Hint    string `json:"hint,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Code is the HTTP status for the error.
func (e *AppError) Code() int {
	return e.Kind.StatusCode()
}

// WithHint attaches a user-facing suggestion shown under the message.
func (e *AppError) WithHint(hint string) *AppError {
	e.Hint = hint
	return e
}

func E(kind Kind, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return E(KindInvalidInput, op, err, message)
}

func AcquisitionFailure(op string, err error, message string) *AppError {
	return E(KindAcquisition, op, err, message)
}

func ExtractionFailure(op string, err error, message string) *AppError {
	return E(KindExtraction, op, err, message)
}

func TranscriptionFailure(op string, err error, message string) *AppError {
	return E(KindTranscription, op, err, message)
}

func SummaryDegradation(op string, err error, message string) *AppError {
	return E(KindSummaryDegradation, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return E(KindNotFound, op, err, message)
}

func Busy(op string, err error, message string) *AppError {
	return E(KindBusy, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return E(KindInternal, op, err, message)
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

func IsNotFound(err error) bool {
	return Is(err, KindNotFound)
}

// As is re-exported so callers importing this package don't also need the standard one.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

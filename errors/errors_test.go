package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := InvalidInput("test", nil, "test message")

	if err.Code() != http.StatusBadRequest {
		t.Errorf("expected code %d, got %d", http.StatusBadRequest, err.Code())
	}

	if err.Error() != "test message" {
		t.Errorf("expected error string 'test message', got '%s'", err.Error())
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("cause error")
	err := AcquisitionFailure("test", cause, "test message")

	expected := "test message: cause error"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
	if err.Unwrap() != cause {
		t.Errorf("expected Unwrap to return the cause")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{
			name:     "direct app error",
			err:      ExtractionFailure("op", nil, "boom"),
			expected: KindExtraction,
		},
		{
			name:     "wrapped app error",
			err:      fmt.Errorf("outer: %w", TranscriptionFailure("op", nil, "boom")),
			expected: KindTranscription,
		},
		{
			name:     "non-custom error",
			err:      fmt.Errorf("standard error"),
			expected: KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("KindOf() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("op", nil, "missing")) {
		t.Error("expected not found error to match")
	}
	if IsNotFound(InvalidInput("op", nil, "bad")) {
		t.Error("expected invalid input not to match")
	}
	if IsNotFound(nil) {
		t.Error("expected nil not to match")
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected int
	}{
		{"invalid input", InvalidInput("op", nil, "x"), http.StatusBadRequest},
		{"acquisition failure", AcquisitionFailure("op", nil, "x"), http.StatusUnprocessableEntity},
		{"extraction failure", ExtractionFailure("op", nil, "x"), http.StatusInternalServerError},
		{"transcription failure", TranscriptionFailure("op", nil, "x"), http.StatusInternalServerError},
		{"not found", NotFound("op", nil, "x"), http.StatusNotFound},
		{"busy", Busy("op", nil, "x"), http.StatusServiceUnavailable},
		{"rate limited", E(KindRateLimited, "op", nil, "x"), http.StatusTooManyRequests},
		{"internal", Internal("op", nil, "x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code() != tt.expected {
				t.Errorf("expected code %d, got %d", tt.expected, tt.err.Code())
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	err := AcquisitionFailure("op", nil, "download failed").WithHint("check the link")
	if err.Hint != "check the link" {
		t.Errorf("expected hint to be set, got %q", err.Hint)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

/**
 * Custom error types for ocrmd
 *
 * Every failure surfaced to the CLI carries a stable code so batch runs can
 * classify per-input outcomes without string matching.
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// OCR response errors
	ErrorMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	ErrorImageDecodeFailed ErrorCode = "IMAGE_DECODE_FAILED"
	ErrorImageWriteFailed  ErrorCode = "IMAGE_WRITE_FAILED"

	// Input errors
	ErrorUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrorFileTooLarge      ErrorCode = "FILE_TOO_LARGE"

	// Network errors
	ErrorAPICallFailed   ErrorCode = "API_CALL_FAILED"
	ErrorUploadFailed    ErrorCode = "UPLOAD_FAILED"
	ErrorTranslateFailed ErrorCode = "TRANSLATE_FAILED"

	// Output errors
	ErrorOutputWriteFailed ErrorCode = "OUTPUT_WRITE_FAILED"
)

// ProcessingError represents a structured processing error
type ProcessingError struct {
	Code      ErrorCode
	Message   string
	Input     string
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

// HasCode reports whether err (or anything it wraps) carries the given code
func HasCode(err error, code ErrorCode) bool {
	var pe *ProcessingError
	if stderrors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// Factory functions for common errors

func NewMalformedResponseError(input string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorMalformedResponse,
		Message:   "OCR response contains no pages",
		Input:     input,
		Timestamp: time.Now(),
	}
}

func NewImageDecodeError(imageID string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorImageDecodeFailed,
		Message:   fmt.Sprintf("Failed to decode image payload: %s", imageID),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"image_id": imageID,
		},
		Cause: cause,
	}
}

func NewImageWriteError(imageID string, path string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorImageWriteFailed,
		Message:   fmt.Sprintf("Failed to write image file: %s", imageID),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"image_id": imageID,
			"path":     path,
		},
		Cause: cause,
	}
}

func NewUnsupportedFormatError(input string, mimeType string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorUnsupportedFormat,
		Message:   fmt.Sprintf("Unsupported file format: %s", mimeType),
		Input:     input,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"mime_type": mimeType,
		},
	}
}

func NewFileTooLargeError(input string, size int64, limit int64) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorFileTooLarge,
		Message:   fmt.Sprintf("File size %d exceeds limit of %d bytes", size, limit),
		Input:     input,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"file_size": size,
			"limit":     limit,
		},
	}
}

func NewAPICallFailedError(input string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorAPICallFailed,
		Message:   "OCR API call failed",
		Input:     input,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewUploadFailedError(input string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorUploadFailed,
		Message:   "File upload failed",
		Input:     input,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewTranslateFailedError(input string, targetLang string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorTranslateFailed,
		Message:   fmt.Sprintf("Translation to %s failed", targetLang),
		Input:     input,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"target_language": targetLang,
		},
		Cause: cause,
	}
}

func NewOutputWriteError(path string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorOutputWriteFailed,
		Message:   fmt.Sprintf("Failed to write output: %s", path),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"path": path,
		},
		Cause: cause,
	}
}

// ToMap converts error to map for metadata sidecars
func (e *ProcessingError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}

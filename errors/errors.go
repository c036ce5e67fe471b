package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the custom error type carried through the pipeline.
// Every failure surfaced to the caller reports its code, the stage
// that failed and, where known, the input file involved.
type AppError struct {
	Raw     error
	Code    ErrorCode
	Stage   string
	Message string
	Details map[string]string
}

// Error implements the error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the ErrorCode from err, or ErrorCode_INTERNAL when err
// is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCode_INTERNAL
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// General errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_INTERNAL,
		Message: "Internal error",
	}
}

// Input errors

func ErrInput(message string) AppError {
	return AppError{
		Code:    ErrorCode_INPUT,
		Stage:   StageInput,
		Message: message,
	}
}

func ErrInputNotFound(path string) AppError {
	return AppError{
		Code:    ErrorCode_INPUT,
		Stage:   StageInput,
		Message: "Audio file not found",
	}.WithDetail("file", path)
}

func ErrUnsupportedFormat(path, ext string) AppError {
	return AppError{
		Code:    ErrorCode_INPUT,
		Stage:   StageInput,
		Message: "Unsupported audio/video format",
	}.WithDetail("file", path).
		WithDetail("extension", ext)
}

func ErrAudioExtractionFailed(path string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_INPUT,
		Stage:   StageInput,
		Message: "Failed to extract audio track",
	}.WithDetail("file", path)
}

// Transcription errors

func ErrTranscription(file string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_TRANSCRIPTION,
		Stage:   StageTranscription,
		Message: "Audio transcription failed",
	}.WithDetail("file", file)
}

func ErrTranscriptionTimeout(file string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_TRANSCRIPTION,
		Stage:   StageTranscription,
		Message: "Audio transcription timed out",
	}.WithDetail("file", file)
}

func ErrEmptyTranscript(file string) AppError {
	return AppError{
		Code:    ErrorCode_TRANSCRIPTION,
		Stage:   StageTranscription,
		Message: "Transcription produced no text",
	}.WithDetail("file", file)
}

// Analysis errors

func ErrAnalysis(file string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_ANALYSIS,
		Stage:   StageAnalysis,
		Message: "Meeting analysis failed",
	}.WithDetail("file", file)
}

func ErrAnalysisMalformed(file string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_ANALYSIS,
		Stage:   StageAnalysis,
		Message: "Analysis returned malformed data",
	}.WithDetail("file", file)
}

// Storage errors

func ErrStorage(operation string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_STORAGE,
		Stage:   StageStorage,
		Message: fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

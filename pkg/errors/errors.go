// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002

	// Caption core errors (1100-1199)
	CodeTimestampParse  = 1100
	CodeEmptySequence   = 1101
	CodeInvalidInterval = 1102
	CodeInvalidCaption  = 1103

	// Subtitle file errors (1200-1299)
	CodeSubtitleRead     = 1200
	CodeSubtitleNotFound = 1201

	// Frame extraction errors (1300-1399)
	CodeFrameExtract   = 1300
	CodeFfmpegNotFound = 1301
	CodeVideoNotFound  = 1302

	// Description errors (1400-1499)
	CodeDescribeFailed      = 1400
	CodeDescribeRateLimited = 1401

	// Storage errors (1500-1599)
	CodeDBError     = 1500
	CodeJobNotFound = 1501

	// Job execution errors (1600-1699)
	CodeQueueFull     = 1600
	CodeRunnerStopped = 1601
	CodeJobCanceled   = 1602
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewWithDetail creates a new AppError carrying extra detail
func NewWithDetail(code int, message string, detail string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetDetail extracts detail from error, empty if not AppError
func GetDetail(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return ""
}

// IsParseError reports malformed clock strings in caption input.
func IsParseError(err error) bool {
	return Is(err, CodeTimestampParse)
}

// IsPreconditionError reports inputs the caption core refuses to process:
// empty sequences, non-positive intervals and malformed caption intervals.
func IsPreconditionError(err error) bool {
	switch GetCode(err) {
	case CodeEmptySequence, CodeInvalidInterval, CodeInvalidCaption:
		return true
	}
	return false
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")

	// Caption core
	ErrEmptySequence   = New(CodeEmptySequence, "Caption sequence is empty")
	ErrInvalidInterval = New(CodeInvalidInterval, "Resample interval must be positive")

	// Subtitle files
	ErrSubtitleNotFound = New(CodeSubtitleNotFound, "Subtitle not found")

	// Frames
	ErrFfmpegNotFound = New(CodeFfmpegNotFound, "ffmpeg not found")

	// Descriptions
	ErrDescribeRateLimited = New(CodeDescribeRateLimited, "Description API rate limited")

	// Storage
	ErrDBError     = New(CodeDBError, "Database error")
	ErrJobNotFound = New(CodeJobNotFound, "Caption job not found")

	// Jobs
	ErrQueueFull     = New(CodeQueueFull, "Job queue is full")
	ErrRunnerStopped = New(CodeRunnerStopped, "Job runner stopped")
)

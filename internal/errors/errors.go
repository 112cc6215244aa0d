package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context, preserving its code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode checks whether the error carries the given code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error codes
const (
	CodeDataAccess        = "DATA_ACCESS"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeColumnNotFound    = "COLUMN_NOT_FOUND"
	CodeRenderFailed      = "RENDER_FAILED"
	CodeReportWrite       = "REPORT_WRITE"
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeInternal          = "INTERNAL_ERROR"
)

// Common error constructors
func DataAccess(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDataAccess,
		Message: message,
		Cause:   cause,
	}
}

func UnsupportedFormat(format string) *AppError {
	return Newf(CodeUnsupportedFormat, "unsupported file format %q (supported: .csv, .tsv, .xlsx, .xlsm, .json)", format)
}

func ColumnNotFound(column string) *AppError {
	return Newf(CodeColumnNotFound, "column %q not found in dataset", column)
}

func RenderFailed(chart string, cause error) *AppError {
	return &AppError{
		Code:    CodeRenderFailed,
		Message: fmt.Sprintf("rendering %s failed", chart),
		Cause:   cause,
	}
}

func ReportWrite(cause error) *AppError {
	return &AppError{
		Code:    CodeReportWrite,
		Message: "writing report failed",
		Cause:   cause,
	}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

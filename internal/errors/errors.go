// Package errors provides structured error types for the monitoring toolkit.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by toolkit component.
type ErrorCategory string

const (
	ErrCategoryDataset  ErrorCategory = "DATASET"
	ErrCategoryEndpoint ErrorCategory = "ENDPOINT"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryCapture  ErrorCategory = "CAPTURE"
	ErrCategoryBaseline ErrorCategory = "BASELINE"
	ErrCategorySchedule ErrorCategory = "SCHEDULE"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Dataset codes
	CodeInvalidSchema = "INVALID_SCHEMA"
	CodeEmptyDataset  = "EMPTY_DATASET"
	CodeMalformedRow  = "MALFORMED_ROW"

	// Endpoint codes
	CodeInvokeFailed     = "INVOKE_FAILED"
	CodeEndpointNotFound = "ENDPOINT_NOT_FOUND"
	CodeThrottled        = "THROTTLED"
	CodeBadResponse      = "BAD_RESPONSE"

	// Storage codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Capture codes
	CodeCaptureDisabled = "CAPTURE_DISABLED"
	CodeMalformedRecord = "MALFORMED_RECORD"
	CodeNoCaptureFiles  = "NO_CAPTURE_FILES"

	// Baseline codes
	CodeBaselineMissing = "BASELINE_MISSING"
	CodeMalformedDoc    = "MALFORMED_DOCUMENT"
	CodeSchemaMismatch  = "SCHEMA_MISMATCH"
	CodeNoViolations    = "NO_VIOLATIONS"

	// Schedule codes
	CodeInvalidCron    = "INVALID_CRON"
	CodeInvalidName    = "INVALID_NAME"
	CodeScheduleExists = "SCHEDULE_EXISTS"
	CodeCreateFailed   = "CREATE_FAILED"
	CodeDescribeFailed = "DESCRIBE_FAILED"
	CodeDeleteFailed   = "DELETE_FAILED"
	CodeListFailed     = "LIST_FAILED"
	CodeUnknownRegion  = "UNKNOWN_REGION"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// MonitorError is the structured error type used throughout the toolkit.
type MonitorError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *MonitorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *MonitorError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *MonitorError) Is(target error) bool {
	var t *MonitorError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new MonitorError.
func New(category ErrorCategory, code, message string) *MonitorError {
	return &MonitorError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new MonitorError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *MonitorError {
	return &MonitorError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *MonitorError) WithDetails(details map[string]interface{}) *MonitorError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var me *MonitorError
	if errors.As(err, &me) {
		return me.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a MonitorError.
func GetCategory(err error) ErrorCategory {
	var me *MonitorError
	if errors.As(err, &me) {
		return me.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a MonitorError.
func GetCode(err error) string {
	var me *MonitorError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// isRetryable determines if an error code describes a transient fault.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryEndpoint && code == CodeThrottled:
		return true
	case category == ErrCategoryEndpoint && code == CodeInvokeFailed:
		return true
	case category == ErrCategoryStorage && code == CodeUploadFailed:
		return true
	case category == ErrCategoryStorage && code == CodeDownloadFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewDatasetError(code, message string) *MonitorError {
	return New(ErrCategoryDataset, code, message)
}

func NewEndpointError(code, message string, cause error) *MonitorError {
	return Wrap(ErrCategoryEndpoint, code, message, cause)
}

func NewStorageError(code, message string, cause error) *MonitorError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewCaptureError(code, message string, cause error) *MonitorError {
	return Wrap(ErrCategoryCapture, code, message, cause)
}

func NewBaselineError(code, message string, cause error) *MonitorError {
	return Wrap(ErrCategoryBaseline, code, message, cause)
}

func NewScheduleError(code, message string, cause error) *MonitorError {
	return Wrap(ErrCategorySchedule, code, message, cause)
}

func NewInternalError(message string, cause error) *MonitorError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}

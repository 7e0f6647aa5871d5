package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Callback trust errors (CALLBACK_*)
	ErrorCodeCallbackOrderMismatch     ErrorCode = "CALLBACK_ORDER_MISMATCH"
	ErrorCodeCallbackClientMismatch    ErrorCode = "CALLBACK_CLIENT_MISMATCH"
	ErrorCodeCallbackInvalidSignature  ErrorCode = "CALLBACK_INVALID_SIGNATURE"
	ErrorCodeCallbackProcessorDeclined ErrorCode = "CALLBACK_PROCESSOR_DECLINED"

	// Configuration errors (CONFIG_*)
	ErrorCodeConfigInvalid     ErrorCode = "CONFIG_INVALID"
	ErrorCodeSecretUnavailable ErrorCode = "SECRET_UNAVAILABLE"

	// Order errors (ORDER_*)
	ErrorCodeOrderNotFound ErrorCode = "ORDER_NOT_FOUND"
	ErrorCodeOrderInvalid  ErrorCode = "ORDER_INVALID"
	ErrorCodeOrderExists   ErrorCode = "ORDER_EXISTS"

	// Collaborator errors
	ErrorCodeOutcomeNotAccepted ErrorCode = "OUTCOME_NOT_ACCEPTED"
	ErrorCodeLedgerError        ErrorCode = "LEDGER_ERROR"
	ErrorCodeNotifyError        ErrorCode = "NOTIFY_ERROR"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so sentinel values work with errors.Is
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsCallbackError checks if an error reports an untrusted or declined callback
func IsCallbackError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeCallbackOrderMismatch ||
		code == ErrorCodeCallbackClientMismatch ||
		code == ErrorCodeCallbackInvalidSignature ||
		code == ErrorCodeCallbackProcessorDeclined
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

var rejectionCodes = map[RejectionReason]ErrorCode{
	ReasonOrderMismatch:     ErrorCodeCallbackOrderMismatch,
	ReasonClientMismatch:    ErrorCodeCallbackClientMismatch,
	ReasonInvalidSignature:  ErrorCodeCallbackInvalidSignature,
	ReasonProcessorDeclined: ErrorCodeCallbackProcessorDeclined,
}

// RejectionError converts a rejected outcome into an error for callers that need one.
// It returns nil for an accepted outcome.
func RejectionError(outcome CallbackOutcome) error {
	if outcome.Accepted() {
		return nil
	}
	code, ok := rejectionCodes[outcome.Reason]
	if !ok {
		code = ErrorCodeInternalError
	}
	err := NewDomainError(code, outcome.Message())
	if outcome.Reason == ReasonProcessorDeclined {
		err.WithDetail("return_code", outcome.ReturnCode)
	}
	return err
}

// Structured error instances for errors.Is comparisons
var (
	ErrOrderNotFound = NewDomainError(ErrorCodeOrderNotFound, "order not found")
	ErrOrderExists   = NewDomainError(ErrorCodeOrderExists, "order already exists")
)

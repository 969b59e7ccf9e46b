package errors

import (
	"errors"
	"fmt"
)

// Pipeline error codes. Rate limiting, account and store failures are local to one
// account or record and get absorbed; the rest abort a run's delivery phase.
const (
	CodeRateLimited         = "rate_limited"
	CodeAccountFetchFailed  = "account_fetch_failed"
	CodeStoreWriteFailed    = "store_write_failed"
	CodeSummarizationFailed = "summarization_failed"
	CodeDispatchFailed      = "dispatch_failed"
	CodeMarkFailed          = "mark_failed"
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// GetCode returns the outermost error code in the chain, or "".
func GetCode(err error) string {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return ""
		}
		if e.Code != "" {
			return e.Code
		}
		err = e.Err
	}
	return ""
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code string) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

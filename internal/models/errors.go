package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrInsufficientData = errors.New("insufficient data")
	ErrComputation      = errors.New("computation error")
)

// Error kinds reported in structured error objects
const (
	KindValidation       = "validation_error"
	KindNotFound         = "not_found"
	KindInsufficientData = "insufficient_data"
	KindComputation      = "computation_error"
	KindInternal         = "internal_error"
)

func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func InsufficientDataError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, fmt.Sprintf(format, args...))
}

// ErrorKind maps an error onto the kind string used in API and batch results.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrComputation):
		return KindComputation
	default:
		return KindInternal
	}
}

// ErrorInfo is the structured error object returned instead of a raw error.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{Kind: ErrorKind(err), Message: err.Error()}
}

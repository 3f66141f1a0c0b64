// Package errs defines the error kinds shared by every forecasting package.
//
// Each failure returned by the library carries exactly one kind, so callers can
// branch with errors.Is without string matching:
//
//	series, err := timeseries.Standardize(rows, "Date", "Close")
//	if errors.Is(err, errs.ErrParse) {
//	    // a date could not be parsed
//	}
package errs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrSchema           = errors.New("schema error")
	ErrParse            = errors.New("parse error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNonConvergence   = errors.New("non-convergence")
	ErrConfig           = errors.New("config error")
	ErrIndexType        = errors.New("index type error")
	ErrNotTrained       = errors.New("model not trained")
	ErrUnsupportedModel = errors.New("unsupported model")
	ErrLengthMismatch   = errors.New("length mismatch")
)

// Error is a failure of one operation, tagged with its kind.
type Error struct {
	Kind    error  // one of the Err* kinds above
	Op      string // operation that failed, e.g. "features.Build"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// New creates an error of the given kind.
func New(kind error, op, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an error of the given kind around a lower-level cause.
func Wrap(kind error, op string, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrSchema, ErrParse, ErrInsufficientData, ErrNonConvergence, ErrConfig,
		ErrIndexType, ErrNotTrained, ErrUnsupportedModel, ErrLengthMismatch,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

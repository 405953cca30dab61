// Package apperrors defines the tagged error taxonomy shared across the
// collection engine. Every component raises one of these kinds, wrapped
// with the underlying cause via %w, so callers can recover it with
// errors.As without depending on the component's internal error types.
package apperrors

import "fmt"

// Kind tags a CollectorError with the component-level failure category.
type Kind string

const (
	Collector         Kind = "collector"
	Validation        Kind = "validation"
	PathError         Kind = "path_error"
	FileOperation     Kind = "file_operation"
	Configuration     Kind = "configuration"
	SecurityViolation Kind = "security_violation"
	FilterError       Kind = "filter_error"
	WorkerPool        Kind = "worker_pool"
	ProgressTracking  Kind = "progress_tracking"
	Archive           Kind = "archive"
)

// CollectorError is the concrete error type returned by every component.
// Kind identifies which §4.9 category the failure belongs to; Err, when
// non-nil, is the underlying cause and is reachable via errors.Unwrap.
type CollectorError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *CollectorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *CollectorError) Unwrap() error { return e.Err }

// New builds a CollectorError with no underlying cause.
func New(kind Kind, msg string) error {
	return &CollectorError{Kind: kind, Msg: msg}
}

// Wrap builds a CollectorError annotating an underlying cause. If err is
// nil, Wrap returns nil so it can be used inline in a return statement.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &CollectorError{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the Kind of err if it (or something it wraps) is a
// *CollectorError, and Collector otherwise — the catch-all for unknown
// faults per §4.9.
func KindOf(err error) Kind {
	var ce *CollectorError
	if ok := asCollectorError(err, &ce); ok {
		return ce.Kind
	}
	return Collector
}

func asCollectorError(err error, target **CollectorError) bool {
	for err != nil {
		if ce, ok := err.(*CollectorError); ok {
			*target = ce
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

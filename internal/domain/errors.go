package domain

import (
	"errors"
	"fmt"
)

// ErrorKind only separates a failed HTTP status from every other failure.
type ErrorKind string

const (
	ErrorKindHTTP    ErrorKind = "http"
	ErrorKindGeneric ErrorKind = "generic"
)

// CallError is the tagged failure returned by every external-call wrapper.
type CallError struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *CallError) Error() string {
	if e.Kind == ErrorKindHTTP && e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

func HTTPError(op string, status int, err error) *CallError {
	return &CallError{Op: op, Kind: ErrorKindHTTP, StatusCode: status, Err: err}
}

func GenericError(op string, err error) *CallError {
	return &CallError{Op: op, Kind: ErrorKindGeneric, Err: err}
}

// KindOf returns the kind of a CallError anywhere in err's chain, or generic.
func KindOf(err error) ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrorKindGeneric
}

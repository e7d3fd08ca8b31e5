package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Error is a structured engine error. Data carries diagnostic context such as
// the operation and path involved.
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]any

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)

	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
		}
	}

	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// Is matches any *Error of the same kind, so callers can test with
// errors.Is(err, etoerr.New(etoerr.VersionMismatch, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if !stderrors.As(target, &other) || e == nil || other == nil {
		return false
	}

	return e.Kind == other.Kind
}

// WithCause sets the wrapped root cause.
func (e *Error) WithCause(cause error) *Error {
	if e == nil {
		return nil
	}

	e.cause = cause

	return e
}

// WithData adds a structured diagnostic field.
func (e *Error) WithData(key string, value any) *Error {
	if e == nil {
		return nil
	}

	if e.Data == nil {
		e.Data = make(map[string]any)
	}

	e.Data[key] = value

	return e
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}

	return ""
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, New(kind, ""))
}

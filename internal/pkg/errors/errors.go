package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSuppressed marks an outcome withheld by user preference. It is a
	// control-flow signal, not a failure.
	ErrSuppressed = errors.New("suppressed by preference")
)

type Kind string

const (
	KindDataUnavailable      Kind = "data_unavailable"
	KindInvalidInput         Kind = "invalid_input"
	KindNotFound             Kind = "not_found"
	KindPreferenceSuppressed Kind = "preference_suppressed"
)

// Error carries a Kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidArgument:
		return e.Kind == KindInvalidInput
	case ErrSuppressed:
		return e.Kind == KindPreferenceSuppressed
	}
	return false
}

func DataUnavailable(op string, err error) error {
	return &Error{Kind: KindDataUnavailable, Op: op, Err: err}
}

func InvalidInput(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf(format, args...)}
}

func NotFound(op string, err error) error {
	if err == nil {
		err = ErrNotFound
	}
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

func Suppressed(op string) error {
	return &Error{Kind: KindPreferenceSuppressed, Op: op}
}

// KindOf reports the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

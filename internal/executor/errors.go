package executor

import (
	"errors"
	"fmt"
)

// Failure classes. A handler error matches one of these with errors.Is;
// its message is the human-readable reason recorded for the directive.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrUnknownKind  = errors.New("unknown directive kind")
)

type classified struct {
	class error
	cause error
	msg   string
}

func (e *classified) Error() string { return e.msg }

func (e *classified) Unwrap() []error {
	if e.cause == nil {
		return []error{e.class}
	}
	return []error{e.class, e.cause}
}

func validationf(format string, args ...any) error {
	return &classified{class: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &classified{class: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func preconditionf(format string, args ...any) error {
	return &classified{class: ErrPrecondition, msg: fmt.Sprintf(format, args...)}
}

// classify tags err with class, keeping err's message and chain.
func classify(class, err error) error {
	if err == nil {
		return nil
	}
	return &classified{class: class, cause: err, msg: err.Error()}
}

var errNoActiveMap = preconditionf("No active map")

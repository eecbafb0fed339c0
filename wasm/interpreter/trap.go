package interpreter

import (
	"errors"
	"fmt"

	"github.com/tetratelabs/minwasm/wasm"
)

// trapError is raised while executing a function body. It matches both wasm.ErrTrap and its cause with errors.Is.
type trapError struct {
	cause  error
	detail string
}

func newTrap(cause error, format string, args ...interface{}) error {
	return &trapError{cause: cause, detail: fmt.Sprintf(format, args...)}
}

// Error implements error
func (e *trapError) Error() string {
	return fmt.Sprintf("%s: %s: %s", wasm.ErrTrap, e.cause, e.detail)
}

// Is allows errors.Is(err, wasm.ErrTrap) for any cause.
func (e *trapError) Is(target error) bool {
	return target == wasm.ErrTrap
}

// Unwrap returns the cause, ex. wasm.ErrStackUnderflow.
func (e *trapError) Unwrap() error {
	return e.cause
}

// IsTrap reports whether err was raised while executing a function body, as opposed to failing lookup or arity checks.
func IsTrap(err error) bool {
	return errors.Is(err, wasm.ErrTrap)
}

package grx

import (
	"errors"
	"fmt"
)

// ErrBadDemand is delivered through OnError when Request is called with a
// non-positive amount.
var ErrBadDemand = errors.New("grx: request amount must be positive")

type RuntimeErr struct {
	err error
}

// RuntimeError converts a recovered panic value into an error. Production
// and hook failures are always surfaced as a single OnError signal, never
// re-panicked out of the engine.
func RuntimeError(v interface{}) error {
	if err, ok := v.(error); ok {
		return RuntimeErr{err}
	}
	return RuntimeErr{fmt.Errorf("runtime-error: %v", v)}
}

func (e RuntimeErr) Error() string {
	return e.err.Error()
}

func (e RuntimeErr) Previous() error {
	return e.err
}

func (e RuntimeErr) Unwrap() error {
	return e.err
}

// runHook invokes a side-effect callback, converting a panic into an error.
func runHook(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RuntimeError(r)
		}
	}()
	f()
	return nil
}

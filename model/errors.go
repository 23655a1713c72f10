package model

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a failed parameter or category lookup, typically from
// an unresolved cross-parameter reference.
var ErrNotFound = errors.New("not found")

// ParameterError wraps a failure to resolve or assign a single parameter.
// The original cause is available through errors.Unwrap.
type ParameterError struct {
	Name   string
	SValue string
	Err    error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %q: cannot resolve %q: %v", e.Name, e.SValue, e.Err)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

// TypeError reports a value that does not conform to a parameter's declared
// type.
type TypeError struct {
	Name string
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("parameter %q: wrong value type for %v, %s expected", e.Name, e.Got, e.Want)
}

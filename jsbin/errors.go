package jsbin

import (
	"errors"
	"fmt"
)

// ErrFinished is returned (wrapped in an IOError) by writes to a Writer that has been closed.
var ErrFinished = errors.New("jsbin: write to finished writer")

// IOError records a failure to write to the destination, or a write after Close.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("jsbin: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// EncodingError indicates that some input could not be represented in the emitted text.
type EncodingError struct {
	What string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("jsbin: cannot encode %s: %v", e.What, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

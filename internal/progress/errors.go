package progress

import "errors"

var (
	// ErrAlreadyRun is returned by Run when the iterator has been driven before
	ErrAlreadyRun = errors.New("iterator already run")

	// ErrPanic wraps a value recovered from a panicking factory, sequence or listener
	ErrPanic = errors.New("panic during iteration")

	// ErrNilSequence indicates the factory returned neither a sequence nor an error
	ErrNilSequence = errors.New("factory returned nil sequence")
)

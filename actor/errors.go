package actor

import "errors"

var (
	// ErrStopped is returned when delivering to an execution context that has stopped.
	ErrStopped = errors.New("actor: stopped")
	// ErrBusy is returned when a synchronous context is already being driven by another goroutine.
	ErrBusy = errors.New("actor: context is driven by another goroutine")
)

package schema

import "errors"

var (
	// ErrInvalidNick indicates a nick that cannot be sent on the wire.
	ErrInvalidNick = errors.New("invalid nick")
	// ErrInvalidBackend indicates a malformed backend address.
	ErrInvalidBackend = errors.New("invalid backend")
	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrWouldBlock indicates a non-blocking read found no pending frame.
	ErrWouldBlock = errors.New("would block")
	// ErrQueueFull indicates the outbound queue cannot take another message.
	ErrQueueFull = errors.New("outbound queue full")
	// ErrQueueClosed indicates the network role has exited and no longer drains the outbound queue.
	ErrQueueClosed = errors.New("outbound queue closed")
)

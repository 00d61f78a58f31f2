package errors

import (
	"errors"
	"fmt"
)

// ProtocolError is the base interface for all errors produced by this module.
type ProtocolError interface {
	error
	IsProtocolError() bool
}

// Compile-time verification that all error types implement ProtocolError.
var (
	_ ProtocolError = (*ReadError)(nil)
	_ ProtocolError = (*DecodeError)(nil)
	_ ProtocolError = (*WriteError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrStreamClosed indicates the child's output stream closed before a
	// message was found. Callers should treat the protocol channel as no
	// longer usable.
	ErrStreamClosed = errors.New("child output stream closed before a message was found")

	// ErrReaderClosed indicates the message reader has been closed and will
	// deliver no further lines.
	ErrReaderClosed = errors.New("message reader closed")

	// ErrWriterClosed indicates the message writer has been closed.
	ErrWriterClosed = errors.New("message writer closed")

	// ErrExecutorClosed indicates the executor is closed and accepts no new tasks.
	ErrExecutorClosed = errors.New("executor closed")

	// ErrExecutorBusy indicates the executor's task queue is full.
	ErrExecutorBusy = errors.New("executor task queue full")
)

// ReadError indicates reading from the child's output stream failed.
type ReadError struct {
	StreamID string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read from child output (stream %s): %v", e.StreamID, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsProtocolError implements ProtocolError.
func (e *ReadError) IsProtocolError() bool { return true }

// DecodeError indicates a line of child output could not be decoded into a
// message. This error preserves the original line that failed to decode.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode message from line: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsProtocolError implements ProtocolError.
func (e *DecodeError) IsProtocolError() bool { return true }

// WriteError indicates writing to the child's input stream failed.
type WriteError struct {
	StreamID string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write to child input (stream %s): %v", e.StreamID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsProtocolError implements ProtocolError.
func (e *WriteError) IsProtocolError() bool { return true }

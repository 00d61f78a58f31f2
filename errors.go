package multilang

import "github.com/streamshard/multilang-go/internal/errors"

// Re-export error types from internal package

// ProtocolError is the base interface for all errors produced by this module.
type ProtocolError = errors.ProtocolError

// ReadError indicates reading from the child's output stream failed.
type ReadError = errors.ReadError

// DecodeError indicates a line of child output could not be decoded into a
// message. Decode errors never escape a NextMessage task; they surface only
// from direct Decoder use.
type DecodeError = errors.DecodeError

// WriteError indicates writing to the child's input stream failed.
type WriteError = errors.WriteError

// Re-export sentinel errors from internal package.
var (
	// ErrStreamClosed indicates the child's output stream closed before a
	// message was found. Callers should treat the protocol channel as no
	// longer usable.
	ErrStreamClosed = errors.ErrStreamClosed

	// ErrReaderClosed indicates the message reader has been closed.
	ErrReaderClosed = errors.ErrReaderClosed

	// ErrWriterClosed indicates the message writer has been closed.
	ErrWriterClosed = errors.ErrWriterClosed

	// ErrExecutorClosed indicates the executor is closed and accepts no new tasks.
	ErrExecutorClosed = errors.ErrExecutorClosed

	// ErrExecutorBusy indicates the executor's task queue is full.
	ErrExecutorBusy = errors.ErrExecutorBusy
)

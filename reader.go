package multilang

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"sync"

	"github.com/streamshard/multilang-go/internal/errors"
	"github.com/streamshard/multilang-go/internal/stream"
	"github.com/streamshard/multilang-go/internal/task"
)

// MessageReader extracts structured protocol messages from a child process's
// output stream while tolerating interleaved non-protocol text (debug
// prints, blank lines) on the same stream.
//
// Each public operation submits a fresh task to the reader's executor and
// returns immediately with a handle; the caller decides when to await or
// cancel it. The reader exclusively owns its line source: all stream
// consumption happens inside the tasks it submits, strictly in stream order.
//
// Submitting two tasks concurrently is legal but races them over line
// ownership: the line source provides no arbitration beyond sequential
// consumption, so lines split between the tasks non-deterministically.
// Callers should serialize NextMessage calls and not mix them with an
// active Drain.
type MessageReader struct {
	log      *slog.Logger
	source   *stream.LineSource
	decoder  Decoder
	exec     *Executor
	ownsExec bool
	streamID string

	closeOnce sync.Once
}

// NewMessageReader creates a reader over the child's output stream, fully
// initialized and ready for use. streamID is an opaque correlation token
// attached to log output; it is carried, not interpreted.
//
// By default the reader uses JSONDecoder, owns a private executor, and logs
// nothing. Use WithDecoder, WithExecutor, and WithLogger to override.
func NewMessageReader(r io.Reader, streamID string, opts ...Option) *MessageReader {
	options := applyOptions(opts)

	log := options.logger
	if log == nil {
		log = NopLogger()
	}

	log = log.With("component", "message_reader", "stream_id", streamID)

	decoder := options.decoder
	if decoder == nil {
		decoder = JSONDecoder{}
	}

	exec := options.executor
	ownsExec := false

	if exec == nil {
		exec = task.NewExecutor(log, options.workers)
		ownsExec = true
	}

	return &MessageReader{
		log:      log,
		source:   stream.NewLineSource(log, r, options.maxLineSize),
		decoder:  decoder,
		exec:     exec,
		ownsExec: ownsExec,
		streamID: streamID,
	}
}

// StreamID returns the correlation token this reader tags its log output with.
func (mr *MessageReader) StreamID() string {
	return mr.streamID
}

// NextMessage submits a task that reads the child's output line by line
// until a line decodes into a Message, and returns its handle.
//
// Lines that fail to decode (blank lines, debug prints, malformed JSON) are
// skipped silently; decode failures never fail the task. The handle fails
// with ErrStreamClosed if the stream ends before a message is found — the
// result is only ever a Message, never an absent success — and with a
// ReadError wrapping the cause on I/O failure.
//
// Cancelling ctx or the handle stops the task promptly. Lines it already
// consumed are permanently lost from the stream.
func (mr *MessageReader) NextMessage(ctx context.Context) *Handle[Message] {
	h := task.NewHandle[Message](ctx)
	log := mr.log.With("task", "next_message", "task_id", h.ID())

	task.Spawn(mr.exec, h, func(ctx context.Context) (Message, error) {
		for {
			line, err := mr.source.Next(ctx)
			if err != nil {
				switch {
				case stderrors.Is(err, io.EOF):
					log.Debug("Stream closed before a message was found")

					return nil, errors.ErrStreamClosed

				case ctx.Err() != nil:
					log.Debug("Task cancelled while waiting for a line")

					return nil, err

				case stderrors.Is(err, errors.ErrReaderClosed):
					return nil, err

				default:
					log.Warn("Read error while scanning for a message", "error", err)

					return nil, &errors.ReadError{StreamID: mr.streamID, Err: err}
				}
			}

			msg, decodeErr := mr.decoder.Decode(line)
			if decodeErr != nil {
				log.Debug("Skipping line that did not decode to a message", "line", line)

				continue
			}

			log.Debug("Decoded message from child output", "message_type", msg.MessageType())

			return msg, nil
		}
	})

	return h
}

// Drain submits a task that consumes the remainder of the child's output for
// post-mortem debugging, and returns its handle. Every line — including
// empty lines and lines that would not decode — is logged at Info level,
// tagged with the reader's stream identifier; no decoding is attempted.
//
// The handle succeeds with true when the stream closes cleanly and with
// false on a read error: draining is best-effort diagnostics, so I/O
// trouble is reported as a value, never as a failure. Only cancellation
// fails the handle.
func (mr *MessageReader) Drain(ctx context.Context) *Handle[bool] {
	h := task.NewHandle[bool](ctx)
	log := mr.log.With("task", "drain", "task_id", h.ID())

	task.Spawn(mr.exec, h, func(ctx context.Context) (bool, error) {
		for {
			line, err := mr.source.Next(ctx)
			if err != nil {
				switch {
				case stderrors.Is(err, io.EOF):
					log.Debug("Drained child output to end of stream")

					return true, nil

				case ctx.Err() != nil:
					log.Debug("Drain cancelled")

					return false, err

				default:
					log.Warn("Read error while draining child output", "error", err)

					return false, nil
				}
			}

			log.Info("Drained line from child output", "line", line)
		}
	})

	return h
}

// Close stops line delivery and, when the reader owns its executor, shuts it
// down after in-flight tasks finish. Injected executors are left running for
// their owner to close.
//
// Close does not close the underlying stream; that remains the supervisor's
// responsibility, and a read blocked inside the stream is only released when
// the supervisor closes it. Cancel or await outstanding handles before
// calling Close. Safe to call multiple times.
func (mr *MessageReader) Close() {
	mr.closeOnce.Do(func() {
		mr.source.Close()

		if mr.ownsExec {
			mr.exec.Close()
		}

		mr.log.Debug("Message reader closed")
	})
}

package multilang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/streamshard/multilang-go/internal/errors"
)

// writeUnblockTimeout bounds the wait for a cancelled write to observe the
// stream close.
const writeUnblockTimeout = 1 * time.Second

// MessageWriter writes protocol messages to a child process's input stream.
//
// Each message is framed as a single JSON document with a leading and a
// trailing newline, so the child can rely on every message arriving isolated
// on a line of its own even when unrelated output left the stream
// mid-line. Writes are serialized; MessageWriter is safe for concurrent use.
type MessageWriter struct {
	log      *slog.Logger
	streamID string

	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewMessageWriter creates a writer over the child's input stream. streamID
// is the correlation token attached to log output. Of the options, only
// WithLogger applies to writers.
func NewMessageWriter(w io.Writer, streamID string, opts ...Option) *MessageWriter {
	options := applyOptions(opts)

	log := options.logger
	if log == nil {
		log = NopLogger()
	}

	return &MessageWriter{
		log:      log.With("component", "message_writer", "stream_id", streamID),
		streamID: streamID,
		w:        w,
	}
}

// WriteMessage marshals msg and writes it to the child as one framed line.
//
// If ctx is cancelled during a blocked write, the underlying stream is
// closed to unblock it (safe since Go 1.9+) and the writer becomes unusable;
// subsequent calls return ErrWriterClosed.
func (mw *MessageWriter) WriteMessage(ctx context.Context, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return mw.writeFrame(ctx, data)
}

// WriteAction writes a message carrying the given action and payload fields.
// A payload key named "action" does not override the action.
func (mw *MessageWriter) WriteAction(ctx context.Context, action string, payload map[string]any) error {
	frame := make(map[string]any, len(payload)+1)
	maps.Copy(frame, payload)
	frame["action"] = action

	return mw.WriteMessage(ctx, frame)
}

func (mw *MessageWriter) writeFrame(ctx context.Context, data []byte) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	if mw.closed {
		return errors.ErrWriterClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	framed := make([]byte, 0, len(data)+2)
	framed = append(framed, '\n')
	framed = append(framed, data...)
	framed = append(framed, '\n')

	// Write in a goroutine to respect context cancellation.
	done := make(chan error, 1)

	go func() {
		_, err := mw.w.Write(framed)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			mw.log.Error("Failed to write message to child", "error", err)

			return &errors.WriteError{StreamID: mw.streamID, Err: err}
		}

		mw.log.Debug("Message written to child", "data_len", len(data))

		return nil

	case <-ctx.Done():
		mw.log.Debug("Context cancelled during write, closing child input stream")

		if c, ok := mw.w.(io.Closer); ok {
			_ = c.Close()
		}

		mw.closed = true

		select {
		case <-done:
		case <-time.After(writeUnblockTimeout):
			mw.log.Warn("Write goroutine did not exit after stream close, potential leak")
		}

		return ctx.Err()
	}
}

// Close marks the writer closed and closes the underlying stream when it is
// an io.Closer. Safe to call multiple times.
func (mw *MessageWriter) Close() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	if mw.closed {
		return nil
	}

	mw.closed = true

	if c, ok := mw.w.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

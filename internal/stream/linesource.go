// Package stream provides buffered, newline-delimited reading of a child
// process's output stream.
package stream

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/streamshard/multilang-go/internal/errors"
)

const (
	// DefaultMaxLineSize is the maximum buffer size for a single line of
	// child output.
	DefaultMaxLineSize = 1024 * 1024 // 1MB
)

// LineSource wraps a child process output stream with buffered,
// newline-delimited reading.
//
// A single reader goroutine owns the underlying stream and hands lines to
// consumers over an unbuffered channel, so at most one line is ever read
// ahead of the consumer. Lines are delivered strictly in stream order; no
// line is returned twice and no line can be pushed back.
//
// Both "\n" and "\r\n" are accepted as separators and are stripped from the
// returned lines.
type LineSource struct {
	log *slog.Logger

	lines chan string
	stop  chan struct{}

	stopOnce sync.Once

	// cause is the terminal condition of the stream. The reader goroutine
	// sets it before closing lines, so consumers always observe it after
	// the channel closes.
	causeMu sync.RWMutex
	cause   error
}

// NewLineSource creates a LineSource over r and starts its reader goroutine.
//
// maxLineSize bounds the length of a single line; values <= 0 use
// DefaultMaxLineSize. The reader goroutine exits when the stream reaches
// end-of-file, a read error occurs, or Close is called. A goroutine blocked
// inside a read is only released when the underlying stream is closed by its
// owner; Close alone stops delivery at the next line boundary.
func NewLineSource(log *slog.Logger, r io.Reader, maxLineSize int) *LineSource {
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}

	s := &LineSource{
		log:   log.With("component", "line_source"),
		lines: make(chan string),
		stop:  make(chan struct{}),
	}

	go s.read(r, maxLineSize)

	return s
}

// read scans the stream line by line and delivers each line to a consumer.
// It records the terminal condition and closes the lines channel on exit.
func (s *LineSource) read(r io.Reader, maxLineSize int) {
	defer close(s.lines)

	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxLineSize)
	scanner.Buffer(buf, maxLineSize)

	for scanner.Scan() {
		select {
		case s.lines <- scanner.Text():
		case <-s.stop:
			s.log.Debug("Line source closed with stream still open")
			s.setCause(errors.ErrReaderClosed)

			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.log.Debug("Line source terminated by read error", "error", err)
		s.setCause(err)

		return
	}

	s.log.Debug("Line source reached end of stream")
	s.setCause(io.EOF)
}

// Next returns the next line of the stream with its trailing line terminator
// stripped. The returned line may be empty.
//
// Next blocks until a full line is available, the stream terminates, or ctx
// is cancelled. Cancellation never loses a line: a line already read by the
// reader goroutine stays pending for the next call.
//
// After the stream terminates, Next idempotently returns the terminal
// condition: io.EOF after a clean close, the underlying read error after an
// I/O failure, or ErrReaderClosed after Close.
func (s *LineSource) Next(ctx context.Context) (string, error) {
	select {
	case line, ok := <-s.lines:
		if !ok {
			return "", s.Cause()
		}

		return line, nil

	case <-s.stop:
		return "", errors.ErrReaderClosed

	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Cause returns the terminal condition of the stream, or io.EOF if the
// stream has not terminated yet.
func (s *LineSource) Cause() error {
	s.causeMu.RLock()
	defer s.causeMu.RUnlock()

	if s.cause == nil {
		return io.EOF
	}

	return s.cause
}

func (s *LineSource) setCause(err error) {
	s.causeMu.Lock()
	defer s.causeMu.Unlock()

	if s.cause == nil {
		s.cause = err
	}
}

// Close stops line delivery. It is safe to call multiple times.
//
// Close does not close the underlying stream; that remains the owner's
// responsibility. A reader goroutine blocked inside a read stays blocked
// until the owner closes the stream.
func (s *LineSource) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

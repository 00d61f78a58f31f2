package stream

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/streamshard/multilang-go/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingReader serves its data, then fails with err instead of a clean EOF.
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}

	n := copy(p, r.data)
	r.data = r.data[n:]

	return n, nil
}

func TestLineSource_DeliversLinesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := NewLineSource(discardLogger(), newStringReader("first\nsecond\r\nthird\n"), 0)
	ctx := context.Background()

	for _, want := range []string{"first", "second", "third"} {
		line, err := src.Next(ctx)
		require.NoError(t, err)
		require.Equal(t, want, line)
	}

	_, err := src.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestLineSource_EmptyLines(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := NewLineSource(discardLogger(), newStringReader("\n\npayload\n"), 0)
	ctx := context.Background()

	for _, want := range []string{"", "", "payload"} {
		line, err := src.Next(ctx)
		require.NoError(t, err)
		require.Equal(t, want, line)
	}

	_, err := src.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestLineSource_EndOfStreamIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := NewLineSource(discardLogger(), newStringReader(""), 0)
	ctx := context.Background()

	for range 5 {
		_, err := src.Next(ctx)
		require.ErrorIs(t, err, io.EOF)
	}
}

func TestLineSource_ReadErrorIsSticky(t *testing.T) {
	defer goleak.VerifyNone(t)

	rootErr := io.ErrUnexpectedEOF
	src := NewLineSource(discardLogger(), &failingReader{data: []byte("partial\n"), err: rootErr}, 0)
	ctx := context.Background()

	line, err := src.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "partial", line)

	for range 3 {
		_, err := src.Next(ctx)
		require.ErrorIs(t, err, rootErr)
	}
}

func TestLineSource_CancellationDoesNotLoseLines(t *testing.T) {
	pr, pw := io.Pipe()

	defer goleak.VerifyNone(t)
	defer func() { _ = pw.Close() }()

	src := NewLineSource(discardLogger(), pr, 0)

	// No line available yet: a bounded wait expires without consuming anything.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := src.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		_, _ = pw.Write([]byte("late\n"))
		_ = pw.Close()
	}()

	line, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "late", line)

	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestLineSource_CloseUnblocksNext(t *testing.T) {
	pr, pw := io.Pipe()

	defer goleak.VerifyNone(t)
	defer func() { _ = pw.Close() }()

	src := NewLineSource(discardLogger(), pr, 0)

	done := make(chan error, 1)

	go func() {
		_, err := src.Next(context.Background())
		done <- err
	}()

	src.Close()

	select {
	case err := <-done:
		require.ErrorIs(t, err, errors.ErrReaderClosed)
	case <-time.After(time.Second):
		t.Fatal("Next did not observe Close")
	}

	// Repeated calls keep reporting the closed state.
	_, err := src.Next(context.Background())
	require.ErrorIs(t, err, errors.ErrReaderClosed)
}

func TestLineSource_LongLine(t *testing.T) {
	defer goleak.VerifyNone(t)

	long := make([]byte, 64*1024)
	for i := range long {
		long[i] = 'x'
	}

	src := NewLineSource(discardLogger(), newStringReader(string(long)+"\n"), 0)

	line, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, line, len(long))
}

func TestLineSource_LineOverMaxSizeFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := NewLineSource(discardLogger(), newStringReader("aaaaaaaaaaaaaaaaaaaa\n"), 8)

	_, err := src.Next(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}

func newStringReader(s string) io.Reader {
	return &failingReader{data: []byte(s), err: io.EOF}
}

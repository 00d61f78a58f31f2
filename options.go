package multilang

import "log/slog"

// readerOptions collects the collaborator-provided configuration for readers
// and writers.
type readerOptions struct {
	logger      *slog.Logger
	decoder     Decoder
	executor    *Executor
	workers     int
	maxLineSize int
}

// Option configures a MessageReader or MessageWriter using the functional
// options pattern.
type Option func(*readerOptions)

// applyOptions applies functional options to a readerOptions struct.
func applyOptions(opts []Option) *readerOptions {
	options := &readerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug and diagnostic output, including the
// lines captured by Drain. If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *readerOptions) {
		o.logger = logger
	}
}

// WithDecoder replaces the default JSONDecoder, typically with a
// schema-aware decoder that produces concrete message types.
func WithDecoder(d Decoder) Option {
	return func(o *readerOptions) {
		o.decoder = d
	}
}

// WithExecutor injects a shared executor for running tasks. The reader never
// closes an injected executor; its owner does. If not set, the reader
// creates and owns a private one.
func WithExecutor(e *Executor) Option {
	return func(o *readerOptions) {
		o.executor = e
	}
}

// WithWorkers sets the worker pool size of the executor the reader creates.
// Ignored when an executor is injected via WithExecutor.
func WithWorkers(n int) Option {
	return func(o *readerOptions) {
		o.workers = n
	}
}

// WithMaxLineSize bounds the length of a single line of child output, in
// bytes. Defaults to 1MB.
func WithMaxLineSize(n int) Option {
	return func(o *readerOptions) {
		o.maxLineSize = n
	}
}

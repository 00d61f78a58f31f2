// Package multilang bridges a parent process and a child written in any
// language by extracting structured protocol messages from the child's
// output stream.
//
// The child speaks a line-framed protocol: one self-contained JSON document
// per line. Anything else on the stream — blank lines, debug prints,
// malformed JSON — is tolerated as noise and skipped. There is no
// length-prefixed or delimiter-escaped wire format; robustness rests
// entirely on the one-object-per-line convention.
//
// # Reading Messages
//
// Create a MessageReader over the child's stdout once the stream and a
// correlation token are known, then request messages one at a time:
//
//	stdout, _ := cmd.StdoutPipe()
//	reader := multilang.NewMessageReader(stdout, shardID,
//	    multilang.WithLogger(logger),
//	)
//	defer reader.Close()
//
//	handle := reader.NextMessage(ctx)
//
//	msg, err := handle.Result(ctx)
//	if err != nil {
//	    // The protocol channel is no longer usable: the stream closed
//	    // before a message arrived (ErrStreamClosed) or reading failed
//	    // (ReadError). Decide whether to respawn the child.
//	}
//
// Each call to NextMessage submits a fresh task to the reader's executor and
// returns immediately with a cancellable, independently awaitable handle.
// Serialize NextMessage calls: two tasks submitted concurrently race over
// line ownership and split the stream between them non-deterministically.
//
// # Draining
//
// Once the parent decides it will no longer decode protocol messages from a
// child (for example while shutting it down), Drain consumes whatever the
// child prints afterward and logs every line for post-mortem debugging:
//
//	done := reader.Drain(ctx)
//
//	clean, _ := done.Result(ctx)  // true on clean close, false on read error
//
// Draining never fails on I/O trouble; the error is reported as a false
// result because the diagnostics are best-effort.
//
// # Writing Messages
//
// MessageWriter covers the reverse channel, framing each message with a
// leading and trailing newline so the child can rely on line isolation:
//
//	stdin, _ := cmd.StdinPipe()
//	writer := multilang.NewMessageWriter(stdin, shardID)
//
//	err := writer.WriteAction(ctx, "checkpoint", map[string]any{"error": nil})
//
// # Logging
//
// By default all components are silent. Pass WithLogger to receive
// slog output tagged with the stream identifier, including the lines
// captured by Drain.
package multilang

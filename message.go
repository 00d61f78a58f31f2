package multilang

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/streamshard/multilang-go/internal/errors"
)

// Message represents a single protocol message decoded from exactly one line
// of child output. Use type assertion to recover the concrete type produced
// by the configured Decoder.
type Message interface {
	MessageType() string
}

// Compile-time verification that RawMessage implements Message.
var _ Message = (*RawMessage)(nil)

// RawMessage is the generic wire envelope: a single self-contained JSON
// object carrying an "action" field that names the protocol operation.
//
// Schema-aware collaborators can interpret Data, which preserves the
// complete document the message was decoded from.
type RawMessage struct {
	// Action identifies the protocol operation carried by this message.
	Action string `json:"action"`

	// Data is the full JSON document the message was decoded from.
	Data json.RawMessage `json:"-"`
}

// MessageType implements Message.
func (m *RawMessage) MessageType() string {
	return m.Action
}

// Decoder converts one line of child output into a typed Message.
//
// Decode is pure with respect to prior lines: each call depends only on its
// input, with no streaming state carried between lines. A line that cannot
// be decoded yields an ordinary error value, never a panic; the reader
// treats such lines as protocol noise and skips them.
type Decoder interface {
	Decode(line string) (Message, error)
}

// Compile-time verification that JSONDecoder implements Decoder.
var _ Decoder = JSONDecoder{}

// JSONDecoder is the default decoder. It accepts a single JSON object per
// line with a non-empty "action" field and produces a *RawMessage.
//
// Empty or whitespace-only lines, malformed JSON, non-object documents, and
// objects without an "action" field all fail to decode.
type JSONDecoder struct{}

// Decode implements Decoder.
func (JSONDecoder) Decode(line string) (Message, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, &errors.DecodeError{Line: line, Err: fmt.Errorf("empty line")}
	}

	var envelope struct {
		Action string `json:"action"`
	}

	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return nil, &errors.DecodeError{Line: line, Err: err}
	}

	if envelope.Action == "" {
		return nil, &errors.DecodeError{
			Line: line,
			Err:  fmt.Errorf("missing or empty 'action' field"),
		}
	}

	return &RawMessage{
		Action: envelope.Action,
		Data:   json.RawMessage(trimmed),
	}, nil
}

package ledger

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Conductor sockets frame every message as a msgpack envelope carrying a
// correlation id, a kind, and an opaque msgpack payload.
const (
	wireTypeRequest      = "request"
	wireTypeResponse     = "response"
	wireTypeSignal       = "signal"
	wireTypeAuthenticate = "authenticate"
)

type wireMessage struct {
	ID   uint64 `msgpack:"id"`
	Type string `msgpack:"type"`
	Data []byte `msgpack:"data"`
}

// taggedMessage is the payload inside an envelope: a request or response
// kind plus its own msgpack-encoded body.
type taggedMessage struct {
	Type string             `msgpack:"type"`
	Data msgpack.RawMessage `msgpack:"data"`
}

// encodeTagged builds the payload for a request of the given kind. A nil
// body encodes as msgpack nil.
func encodeTagged(kind string, body interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s body: %w", kind, err)
	}
	payload, err := msgpack.Marshal(taggedMessage{Type: kind, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	return payload, nil
}

// decodeTagged splits a response payload into its kind and raw body, and
// converts conductor error responses into errors.
func decodeTagged(payload []byte) (string, msgpack.RawMessage, error) {
	var msg taggedMessage
	if err := msgpack.Unmarshal(payload, &msg); err != nil {
		return "", nil, fmt.Errorf("decoding response payload: %w", err)
	}
	if msg.Type == "error" {
		return msg.Type, nil, fmt.Errorf("%w: %s", ErrConductorError, describeError(msg.Data))
	}
	return msg.Type, msg.Data, nil
}

// decodeTaggedInto decodes a response payload, requires the given kind, and
// unmarshals the body into out (skipped when out is nil).
func decodeTaggedInto(payload []byte, wantKind string, out interface{}) error {
	kind, body, err := decodeTagged(payload)
	if err != nil {
		return err
	}
	if kind != wantKind {
		return fmt.Errorf("%w: got %q, want %q", ErrUnexpectedResponse, kind, wantKind)
	}
	if out == nil {
		return nil
	}
	if err := msgpack.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s body: %w", wantKind, err)
	}
	return nil
}

// describeError renders a conductor error body for logs. The body is a
// tagged map; fall back to raw bytes when it is not.
func describeError(raw msgpack.RawMessage) string {
	var body struct {
		Type string `msgpack:"type"`
		Data string `msgpack:"data"`
	}
	if err := msgpack.Unmarshal(raw, &body); err == nil && body.Type != "" {
		if body.Data != "" {
			return fmt.Sprintf("%s: %s", body.Type, body.Data)
		}
		return body.Type
	}
	var generic interface{}
	if err := msgpack.Unmarshal(raw, &generic); err == nil {
		return fmt.Sprintf("%v", generic)
	}
	return fmt.Sprintf("%x", []byte(raw))
}

package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeError reports a frame that could not be decoded into a Message.
type DecodeError struct {
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("decode: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Encode serializes a message to its canonical JSON text encoding. Optional
// fields that are unset are omitted from the output.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}

// Decode parses one text frame into a Message. It fails with a *DecodeError
// when the frame is not a JSON object or does not hold exactly one of the
// two shapes: request (function set) or response (success set). Unknown
// fields are ignored for forward compatibility.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, &DecodeError{Reason: "malformed frame", Cause: err}
	}
	if m.IsRequest() && m.IsResponse() {
		return Message{}, &DecodeError{Reason: "message carries both function and success"}
	}
	if !m.IsRequest() && !m.IsResponse() {
		return Message{}, &DecodeError{Reason: "message carries neither function nor success"}
	}
	return m, nil
}

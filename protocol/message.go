package protocol

// Message is the wire unit exchanged with the relay. A message is either
// request-shaped (Function set) or response-shaped (Success set); a response
// carries the ID of the request it answers.
type Message struct {
	ID       string         `json:"id,omitempty"`
	Function string         `json:"function,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
	Success  *bool          `json:"success,omitempty"`
	Text     string         `json:"message,omitempty"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// IsRequest reports whether the message invokes a function.
func (m *Message) IsRequest() bool {
	return m.Function != ""
}

// IsResponse reports whether the message answers a request.
func (m *Message) IsResponse() bool {
	return m.Success != nil
}

// NewRequest builds a request message for the given function.
func NewRequest(id, function string, params map[string]any) Message {
	return Message{ID: id, Function: function, Params: params}
}

// NewSuccess builds a success response tagged with the request's id.
func NewSuccess(id, text string, data any) Message {
	ok := true
	return Message{ID: id, Success: &ok, Text: text, Data: data}
}

// NewFailure builds a failure response tagged with the request's id.
func NewFailure(id, errMsg string) Message {
	ok := false
	return Message{ID: id, Success: &ok, Error: errMsg}
}

// Handshake is the first frame sent by a newly connected peer, identifying
// its role to the relay.
type Handshake struct {
	ClientType   string   `json:"client_type"`
	Version      string   `json:"version,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// ConnectionState describes the lifecycle of a relay connection.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

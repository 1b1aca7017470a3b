// Package connection owns the relay socket lifecycle: connect, handshake,
// receive loop, send path, disconnect, and the pending-call table. Inbound
// requests are routed to the function registry; inbound responses resolve
// pending outbound calls.
package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/isekream/WindsurfUnityMCP/protocol"
	"github.com/isekream/WindsurfUnityMCP/registry"
)

var (
	// ErrNotConnected is returned by Send and Call when no connection is up.
	ErrNotConnected = errors.New("not connected")
	// ErrConnectionLost resolves pending calls when the transport drops.
	ErrConnectionLost = errors.New("connection lost")
	// ErrConnectInProgress is returned by Connect while another attempt runs.
	ErrConnectInProgress = errors.New("connect already in progress")
	// ErrCallTimeout is returned by Call when no response arrives in time.
	ErrCallTimeout = errors.New("call timed out")
)

const (
	defaultCallTimeout  = 30 * time.Second
	closeWriteTimeout   = 2 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Options configures a Manager.
type Options struct {
	Endpoint    string
	ClientType  string
	Version     string
	Dialer      protocol.WebSocketDialer
	Registry    *registry.Registry
	Logger      zerolog.Logger
	CallTimeout time.Duration // default 30s; upper bound on outbound calls
}

// Manager drives one relay connection through its state machine. It is safe
// for concurrent use; writes to the underlying conn are serialized by the
// conn wrapper.
type Manager struct {
	endpoint    string
	clientType  string
	version     string
	dialer      protocol.WebSocketDialer
	registry    *registry.Registry
	correlator  *Correlator
	logger      zerolog.Logger
	callTimeout time.Duration

	mu    sync.Mutex
	state protocol.ConnectionState
	conn  protocol.WebSocketConn
	done  chan struct{} // closed when the active connection is torn down
}

// NewManager creates a manager in the Disconnected state.
func NewManager(opts Options) *Manager {
	if opts.Dialer == nil {
		opts.Dialer = &protocol.DefaultWebSocketDialer{}
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	logger := opts.Logger.With().Str("component", "connection").Logger()
	return &Manager{
		endpoint:    opts.Endpoint,
		clientType:  opts.ClientType,
		version:     opts.Version,
		dialer:      opts.Dialer,
		registry:    opts.Registry,
		correlator:  NewCorrelator(opts.Logger),
		logger:      logger,
		callTimeout: opts.CallTimeout,
	}
}

// State returns the current connection state.
func (m *Manager) State() protocol.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Correlator exposes the pending-call table, mainly for telemetry.
func (m *Manager) Correlator() *Correlator {
	return m.correlator
}

// Done returns a channel closed when the current connection ends. The
// channel stays available (closed) after teardown so callers that observe
// a drop between Connect and Done never select on nil; it is nil only
// before the first Connect.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Connect opens the transport, sends the handshake identifying this peer,
// and starts the receive loop. Already connected is a logged no-op. On any
// failure the manager returns to Disconnected and reports the error; it
// never retries on its own — reconnect policy belongs to the caller.
func (m *Manager) Connect() error {
	m.mu.Lock()
	switch m.state {
	case protocol.StateConnected:
		m.mu.Unlock()
		m.logger.Info().Str("endpoint", m.endpoint).Msg("Already connected, ignoring connect request")
		return nil
	case protocol.StateConnecting:
		m.mu.Unlock()
		return ErrConnectInProgress
	}
	m.state = protocol.StateConnecting
	m.mu.Unlock()

	conn, _, err := m.dialer.Dial(m.endpoint, nil)
	if err != nil {
		m.setDisconnected()
		return fmt.Errorf("dial %s: %w", m.endpoint, err)
	}

	handshake := protocol.Handshake{
		ClientType:   m.clientType,
		Version:      m.version,
		Capabilities: m.capabilities(),
	}
	_ = conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	if err := conn.WriteJSON(handshake); err != nil {
		conn.Close()
		m.setDisconnected()
		return fmt.Errorf("send handshake: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Time{})

	done := make(chan struct{})
	m.mu.Lock()
	m.conn = conn
	m.done = done
	m.state = protocol.StateConnected
	m.mu.Unlock()

	m.logger.Info().Str("endpoint", m.endpoint).Str("clientType", m.clientType).Msg("Connected to relay")

	go m.receiveLoop(conn, done)
	return nil
}

func (m *Manager) capabilities() []string {
	if m.registry == nil {
		return nil
	}
	return m.registry.Names()
}

func (m *Manager) setDisconnected() {
	m.mu.Lock()
	m.state = protocol.StateDisconnected
	m.mu.Unlock()
}

// Disconnect closes the transport gracefully, cancels the receive loop, and
// fails all pending calls. Already disconnected is a no-op.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		m.logger.Debug().Msg("Already disconnected")
		return
	}

	// Best-effort close handshake; the forceful close below bounds it.
	_ = conn.SetWriteDeadline(time.Now().Add(closeWriteTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	m.teardown(conn, ErrConnectionLost)
}

// teardown moves the manager to Disconnected and cancels every pending call
// with reason. It is idempotent per connection: callers pass the conn they
// observed, and only the first teardown for that conn does the work.
func (m *Manager) teardown(conn protocol.WebSocketConn, reason error) {
	m.mu.Lock()
	if m.conn != conn {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.state = protocol.StateDisconnected
	// m.done is kept, closed, so late Done() callers still get a channel
	// that reports the drop.
	done := m.done
	m.mu.Unlock()

	conn.Close()
	if done != nil {
		close(done)
	}

	if n := m.correlator.CancelAll(reason); n > 0 {
		m.logger.Warn().Int("cancelled", n).Msg("Cancelled pending calls on disconnect")
	}
	m.logger.Info().Msg("Disconnected from relay")
}

// Send encodes the message and writes it to the transport. Fails immediately
// with ErrNotConnected when no connection is up. A write failure tears the
// connection down with the same cleanup as Disconnect.
func (m *Manager) Send(msg protocol.Message) error {
	m.mu.Lock()
	conn := m.conn
	state := m.state
	m.mu.Unlock()

	if state != protocol.StateConnected || conn == nil {
		return ErrNotConnected
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		m.logger.Error().Err(err).Msg("Write failed, tearing down connection")
		m.teardown(conn, fmt.Errorf("%w: %v", ErrConnectionLost, err))
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Call invokes a function on the remote peer and waits for the correlated
// response. The wait is bounded by ctx and by the configured call timeout;
// connection loss resolves the call with ErrConnectionLost.
func (m *Manager) Call(ctx context.Context, function string, params map[string]any) (protocol.Message, error) {
	id, outcomeCh := m.correlator.NewCall()

	if err := m.Send(protocol.NewRequest(id, function, params)); err != nil {
		m.correlator.Forget(id)
		return protocol.Message{}, err
	}

	timer := time.NewTimer(m.callTimeout)
	defer timer.Stop()

	select {
	case out := <-outcomeCh:
		if out.Err != nil {
			return protocol.Message{}, out.Err
		}
		return out.Response, nil
	case <-ctx.Done():
		m.correlator.Forget(id)
		return protocol.Message{}, ctx.Err()
	case <-timer.C:
		m.correlator.Forget(id)
		return protocol.Message{}, fmt.Errorf("%w: %s after %s", ErrCallTimeout, function, m.callTimeout)
	}
}

// receiveLoop reads frames until the transport fails or the peer closes.
// Malformed frames are logged and dropped; requests are handled
// asynchronously so the loop never blocks on a slow handler.
func (m *Manager) receiveLoop(conn protocol.WebSocketConn, done chan struct{}) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				m.logger.Info().Msg("Peer closed the connection")
			} else {
				m.logger.Error().Err(err).Msg("Read error")
			}
			m.teardown(conn, ErrConnectionLost)
			return
		}

		msg, err := protocol.Decode(frame)
		if err != nil {
			// One bad frame must not kill the connection.
			m.logger.Warn().Err(err).Int("bytes", len(frame)).Msg("Dropping malformed frame")
			continue
		}

		switch {
		case msg.IsRequest():
			go m.handleRequest(msg)
		case msg.IsResponse():
			m.correlator.Resolve(msg.ID, Outcome{Response: msg})
		}
	}
}

// handleRequest dispatches one inbound request and sends the reply tagged
// with the request's id. Dispatch failures of every kind become structured
// failure responses; nothing here can take the connection down except a
// failed write.
func (m *Manager) handleRequest(msg protocol.Message) {
	reqLogger := m.logger.With().Str("id", msg.ID).Str("function", msg.Function).Logger()
	reqLogger.Debug().Msg("Handling request")

	if m.registry == nil {
		if err := m.Send(protocol.NewFailure(msg.ID, "this peer registers no functions")); err != nil {
			reqLogger.Error().Err(err).Msg("Failed to send reply")
		}
		return
	}

	var reply protocol.Message
	res, err := m.registry.Dispatch(context.Background(), msg.Function, msg.Params)
	if err != nil {
		reqLogger.Warn().Err(err).Msg("Function failed")
		reply = protocol.NewFailure(msg.ID, err.Error())
	} else {
		reply = protocol.NewSuccess(msg.ID, res.Text, res.Data)
	}

	if err := m.Send(reply); err != nil {
		reqLogger.Error().Err(err).Msg("Failed to send reply")
	}
}

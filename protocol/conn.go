package protocol

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConn abstracts the relay connection for testing.
type WebSocketConn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetWriteDeadline(t time.Time) error
}

// WebSocketDialer abstracts WebSocket dialing for testing.
type WebSocketDialer interface {
	Dial(url string, requestHeader http.Header) (WebSocketConn, *http.Response, error)
}

// GorillaWebSocketConn wraps a gorilla connection with mutex protection for
// concurrent writes (gorilla/websocket is not write-safe).
type GorillaWebSocketConn struct {
	Conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *GorillaWebSocketConn) ReadJSON(v any) error {
	return c.Conn.ReadJSON(v)
}

func (c *GorillaWebSocketConn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

func (c *GorillaWebSocketConn) ReadMessage() (messageType int, p []byte, err error) {
	return c.Conn.ReadMessage()
}

func (c *GorillaWebSocketConn) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

func (c *GorillaWebSocketConn) Close() error {
	return c.Conn.Close()
}

func (c *GorillaWebSocketConn) SetWriteDeadline(t time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.SetWriteDeadline(t)
}

// DefaultWebSocketDialer uses gorilla's default dialer.
type DefaultWebSocketDialer struct {
	HandshakeTimeout time.Duration
}

// Dial opens a WebSocket connection to the given URL.
func (d *DefaultWebSocketDialer) Dial(url string, requestHeader http.Header) (WebSocketConn, *http.Response, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}
	conn, resp, err := dialer.Dial(url, requestHeader)
	if err != nil {
		return nil, resp, err
	}
	return &GorillaWebSocketConn{Conn: conn}, resp, nil
}

package connection

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isekream/WindsurfUnityMCP/protocol"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startRelay runs a minimal relay endpoint: it records the handshake, sends
// one canned request, and forwards whatever reply arrives to repliesCh.
func startRelay(t *testing.T, request string, handshakes chan<- protocol.Handshake, repliesCh chan<- protocol.Message) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer ws.Close()

		var hs protocol.Handshake
		if err := ws.ReadJSON(&hs); err != nil {
			t.Errorf("read handshake: %v", err)
			return
		}
		handshakes <- hs

		if err := ws.WriteMessage(websocket.TextMessage, []byte(request)); err != nil {
			return
		}

		for {
			_, frame, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.Decode(frame)
			if err != nil {
				continue
			}
			repliesCh <- msg
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestManager_EndToEndAgainstRealRelay(t *testing.T) {
	handshakes := make(chan protocol.Handshake, 1)
	repliesCh := make(chan protocol.Message, 10)
	srv := startRelay(t, `{"id":"real-1","function":"echo","params":{"x":5}}`, handshakes, repliesCh)

	endpoint := "ws://" + strings.TrimPrefix(srv.URL, "http://") + "/ws"
	m := NewManager(Options{
		Endpoint:   endpoint,
		ClientType: "unity",
		Version:    "1.0.0",
		Registry:   echoRegistry(t),
		Logger:     zerolog.New(io.Discard),
	})

	require.NoError(t, m.Connect())
	defer m.Disconnect()

	select {
	case hs := <-handshakes:
		assert.Equal(t, "unity", hs.ClientType)
		assert.Contains(t, hs.Capabilities, "echo")
	case <-time.After(2 * time.Second):
		t.Fatal("relay never received the handshake")
	}

	select {
	case reply := <-repliesCh:
		assert.Equal(t, "real-1", reply.ID)
		require.NotNil(t, reply.Success)
		assert.True(t, *reply.Success)
	case <-time.After(2 * time.Second):
		t.Fatal("relay never received the echo reply")
	}
}

func TestManager_DetectsServerClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var hs protocol.Handshake
		_ = ws.ReadJSON(&hs)
		// Close immediately after the handshake.
		_ = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		ws.Close()
	}))
	t.Cleanup(srv.Close)

	endpoint := "ws://" + strings.TrimPrefix(srv.URL, "http://") + "/ws"
	m := NewManager(Options{
		Endpoint:   endpoint,
		ClientType: "unity",
		Logger:     zerolog.New(io.Discard),
	})

	require.NoError(t, m.Connect())
	done := m.Done()
	require.NotNil(t, done)

	select {
	case <-done:
		assert.Equal(t, protocol.StateDisconnected, m.State())
	case <-time.After(2 * time.Second):
		t.Fatal("manager never noticed the server closing")
	}
}

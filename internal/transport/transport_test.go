package transport

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []string
}

func (d *recordingDispatcher) Dispatch(c *Conn, event string, data []byte) {
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
	if event == protocolPingEvent {
		c.Emit(protocolPongEvent, struct{}{})
	}
}

func (d *recordingDispatcher) OnDisconnect(c *Conn) {}

func (d *recordingDispatcher) seen(event string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.events {
		if e == event {
			return true
		}
	}
	return false
}

const (
	protocolPingEvent = "ping"
	protocolPongEvent = "pong"
)

func TestHubDispatchesDecodedEnvelopes(t *testing.T) {
	disp := &recordingDispatcher{}
	hub := NewHub(10, disp)
	go hub.Run()

	server := httptest.NewServer(hub.handlerFunc())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	env := map[string]any{"event": protocolPingEvent, "data": map[string]any{}}
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, reply, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(reply, &got))
	require.Equal(t, protocolPongEvent, got["event"])
	require.True(t, disp.seen(protocolPingEvent))
}

func TestHubEmitToReachesAuthenticatedUser(t *testing.T) {
	disp := &recordingDispatcher{}
	hub := NewHub(10, disp)
	go hub.Run()

	server := httptest.NewServer(hub.handlerFunc())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// give the read pump a moment to register the connection before we
	// look it up by user id from outside the pump goroutines.
	time.Sleep(20 * time.Millisecond)
	hub.mu.RLock()
	var target *Conn
	for c := range hub.conns {
		target = c
	}
	hub.mu.RUnlock()
	require.NotNil(t, target)
	target.Authenticate(42, "voyager", "tok")

	hub.EmitTo(42, "market:update", map[string]any{"ok": true})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, reply, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(reply, &got))
	require.Equal(t, "market:update", got["event"])
}

func TestHubRejectsBeyondMaxConns(t *testing.T) {
	disp := &recordingDispatcher{}
	hub := NewHub(0, disp)
	go hub.Run()

	server := httptest.NewServer(hub.handlerFunc())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		require.Equal(t, 503, resp.StatusCode)
	}
}

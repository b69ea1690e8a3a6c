package signal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rallyhq/rally/internal/config"
	"github.com/rallyhq/rally/internal/core"
	"github.com/rallyhq/rally/internal/domain"
)

func TestWSEventConnBackpressure(t *testing.T) {
	c := &wsEventConn{send: make(chan core.Frame, 2)}

	require.NoError(t, c.TrySend(core.Frame(`{"type":"system"}`)))
	require.NoError(t, c.TrySend(core.Frame(`{"type":"system"}`)))

	// A full queue drops instead of blocking the coordinator.
	assert.ErrorIs(t, c.TrySend(core.Frame(`{}`)), ErrBackpressure)

	c.closed = true
	assert.Error(t, c.TrySend(core.Frame(`{}`)))
}

func TestJoinResultWireShape(t *testing.T) {
	// A join into a quiet room answers with messages present and empty,
	// not with the key missing.
	b, err := json.Marshal(joinResult{
		Type:     "join-result",
		OK:       true,
		Room:     "lobby",
		Messages: []domain.Entry{},
	})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"messages":[]`)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	msgs, ok := decoded["messages"].([]any)
	require.True(t, ok, "messages must be a JSON array, key present")
	assert.Empty(t, msgs)
	assert.Equal(t, true, decoded["ok"])
	assert.Equal(t, "lobby", decoded["room"])
}

func TestWritePumpClosesConnOnShutdown(t *testing.T) {
	serverConn := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConn <- ws
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	var ws *websocket.Conn
	select {
	case ws = <-serverConn:
	case <-time.After(time.Second):
		t.Fatal("no server-side connection")
	}

	conn := &wsEventConn{conn: ws, send: make(chan core.Frame, 1)}
	ctl := &EventWSController{Cfg: &config.Config{PingPeriod: time.Minute}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ctl.writePump(ctx, conn)
		close(done)
	}()

	// Server shutdown must not leave the pump or the transport behind.
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("writePump did not stop on ctx cancel")
	}

	conn.mu.RLock()
	closed := conn.closed
	conn.mu.RUnlock()
	assert.True(t, closed, "writePump must close the connection on exit")

	// The peer sees the close instead of a hang.
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = client.ReadMessage()
	assert.Error(t, err)
}

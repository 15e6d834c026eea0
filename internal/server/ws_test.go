package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()

	ts := httptest.NewServer(h)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("Dial() error = %v", err)
	}
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_Publish(t *testing.T) {
	h := NewHub(nil)
	conn, cleanup := dialHub(t, h)
	defer cleanup()
	waitClients(t, h, 1)

	h.Publish(map[string]any{"gesture": "move", "fingers": "01000"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg["gesture"] != "move" || msg["fingers"] != "01000" {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	h := NewHub(nil)
	conn, cleanup := dialHub(t, h)
	defer cleanup()
	waitClients(t, h, 1)

	conn.Close()
	waitClients(t, h, 0)

	// Publishing with nobody listening is a no-op.
	h.Publish(map[string]string{"gesture": "click"})
}

func TestHub_Close(t *testing.T) {
	h := NewHub(nil)
	conn, cleanup := dialHub(t, h)
	defer cleanup()
	waitClients(t, h, 1)

	h.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected a going-away close, got %v", err)
	}
	if h.Clients() != 0 {
		t.Errorf("expected no clients after Close, got %d", h.Clients())
	}

	late, lateCleanup := dialHub(t, h)
	defer lateCleanup()
	late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("expected a closed hub to drop new clients")
	}
}

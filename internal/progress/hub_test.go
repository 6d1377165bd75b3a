package progress

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesSubscriber(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()
	waitForClients(t, hub, 1)

	hub.Broadcast(Event{
		Scenario:  "base",
		Iteration: 3,
		State:     "solving",
		Objective: 1234.5,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	if got.Scenario != "base" || got.Iteration != 3 || got.Objective != 1234.5 {
		t.Errorf("event = %+v", got)
	}
	if got.Timestamp == 0 {
		t.Error("broadcast should stamp events missing a timestamp")
	}
}

func TestHub_DisconnectedClientIsDropped(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()
	waitForClients(t, hub, 1)

	conn.Close()
	// The read loop notices the close; broadcasting must not error either way.
	hub.Broadcast(Event{Scenario: "base", Iteration: 1})
	waitForClients(t, hub, 0)
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(nil)

	_, cleanup := dialTestHub(t, hub)
	defer cleanup()
	waitForClients(t, hub, 1)

	if err := hub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := hub.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() after Close = %d, want 0", got)
	}
}

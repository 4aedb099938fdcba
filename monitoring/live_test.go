package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubRecentBuffer(t *testing.T) {
	hub := NewHub(2, nil)
	go hub.Run()
	defer hub.Stop()

	for _, id := range []string{"a", "b", "c"} {
		hub.Publish(PredictionEvent{ID: id, Timestamp: time.Now()})
	}

	events := hub.Recent()
	if len(events) != 2 {
		t.Fatalf("expected 2 buffered events, got %d", len(events))
	}
	if events[0].ID != "b" || events[1].ID != "c" {
		t.Fatalf("unexpected replay order: %q, %q", events[0].ID, events[1].ID)
	}
}

func TestHubRejectsClientsAfterStop(t *testing.T) {
	hub := NewHub(8, nil)
	go hub.Run()
	hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// The stopped hub must close the connection instead of blocking the
	// upgrade goroutine on registration.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to be closed by the stopped hub")
	}
}

func TestHubReplaysToNewClients(t *testing.T) {
	hub := NewHub(8, nil)
	go hub.Run()
	defer hub.Stop()

	hub.Publish(PredictionEvent{ID: "first", AmountBase: 42, Timestamp: time.Now()})

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var event PredictionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("invalid event json: %v", err)
	}
	if event.ID != "first" || event.AmountBase != 42 {
		t.Fatalf("unexpected replayed event: %+v", event)
	}
}

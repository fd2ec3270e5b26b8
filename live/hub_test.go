package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, RoomForTournament(r.URL.Query().Get("t")))
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, tournament string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?t=" + tournament
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForRoom(t *testing.T, hub *Hub, room string, size int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.RoomSize(room) != size {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients in %s, got %d", size, room, hub.RoomSize(room))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroadcastReachesOnlyTheRoom(t *testing.T) {
	hub, srv := newTestHub(t)
	gt := dial(t, srv, "gt")
	other := dial(t, srv, "other")
	waitForRoom(t, hub, RoomForTournament("gt"), 1)
	waitForRoom(t, hub, RoomForTournament("other"), 1)

	hub.BroadcastToRoom(RoomForTournament("gt"), MessageScoreEntered, map[string]int{"score": 15})
	hub.BroadcastToRoom(RoomForTournament("gt"), MessageGameCompleted, map[string]int{"game_id": 3})

	_ = gt.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{MessageScoreEntered, MessageGameCompleted} {
		_, data, err := gt.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg struct {
			Type   string          `json:"type"`
			RoomID string          `json:"room_id"`
			Data   json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("expected one JSON message per frame, got %q: %v", data, err)
		}
		if msg.Type != want || msg.RoomID != RoomForTournament("gt") {
			t.Fatalf("expected %s for room gt, got %+v", want, msg)
		}
	}

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatalf("expected no message in another room")
	}
}

func TestClientDisconnectLeavesRoom(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv, "gt")
	waitForRoom(t, hub, RoomForTournament("gt"), 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	waitForRoom(t, hub, RoomForTournament("gt"), 0)
}

func TestRegisterAfterStopClosesClient(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	client := &Client{hub: hub, send: make(chan []byte, 1), room: "r"}
	hub.Register(client)
	if _, ok := <-client.send; ok {
		t.Fatalf("expected send channel to be closed")
	}
}

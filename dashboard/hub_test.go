package dashboard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func hubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for hub.ClientCount() != want {
		select {
		case <-deadline:
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHub_SnapshotOnConnect(t *testing.T) {
	hub := NewHub(func() []RegionUpdate {
		return []RegionUpdate{{Region: RegionClock, Data: "12:00:00"}}
	}, nil)
	conn := dial(t, hubServer(t, hub))

	var u RegionUpdate
	if err := conn.ReadJSON(&u); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if u.Region != RegionClock || u.Data != "12:00:00" {
		t.Errorf("snapshot = %+v, want the clock region", u)
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dial(t, hubServer(t, hub))
	waitForClients(t, hub, 1)

	hub.Broadcast(RegionUpdate{Region: RegionWeather, Error: "weather unavailable"})
	var u RegionUpdate
	if err := conn.ReadJSON(&u); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if u.Region != RegionWeather || u.Error == "" {
		t.Errorf("broadcast = %+v, want the weather error", u)
	}
}

func TestHub_ClientMessagesReachDispatch(t *testing.T) {
	var mu sync.Mutex
	var got []ClientMessage
	hub := NewHub(nil, func(msg ClientMessage) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
	})
	conn := dial(t, hubServer(t, hub))

	if err := conn.WriteJSON(ClientMessage{Action: "toggleLine", Line: "K"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("client message never dispatched")
		case <-time.After(10 * time.Millisecond):
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if got[0].Action != "toggleLine" || got[0].Line != "K" {
		t.Errorf("dispatched message = %+v", got[0])
	}
}

func TestHub_DisconnectedClientIsDropped(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dial(t, hubServer(t, hub))
	waitForClients(t, hub, 1)
	_ = conn.Close()
	waitForClients(t, hub, 0)
}

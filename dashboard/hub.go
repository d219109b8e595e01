package dashboard

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ClientMessage is one control message from a connected dashboard client.
type ClientMessage struct {
	Action    string `json:"action"` // openSelection|setInput|validate|save|cancel|toggleLine|openPopup
	Direction string `json:"direction,omitempty"`
	StopID    string `json:"stopId,omitempty"`
	Line      string `json:"line,omitempty"`
	Enabled   bool   `json:"enabled,omitempty"`
	VehicleID string `json:"vehicleId,omitempty"`
}

// Hub fans region updates out to connected websocket clients and feeds their
// control messages back to the controller.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	snapshot func() []RegionUpdate
	onMsg    func(ClientMessage)
}

// NewHub creates an empty hub. snapshot supplies the current region state for
// newly connected clients; onMsg receives parsed client control messages.
func NewHub(snapshot func() []RegionUpdate, onMsg func(ClientMessage)) *Hub {
	return &Hub{
		clients:  make(map[*websocket.Conn]struct{}),
		snapshot: snapshot,
		onMsg:    onMsg,
	}
}

// HandleWebSocket upgrades the connection and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	h.add(conn)
	go h.readPump(conn)

	if h.snapshot != nil {
		for _, u := range h.snapshot() {
			if err := h.write(conn, u); err != nil {
				return
			}
		}
	}
}

// Broadcast sends one region update to every connected client.
func (h *Hub) Broadcast(u RegionUpdate) {
	data, _ := json.Marshal(u)
	h.mu.Lock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = c.Close()
			delete(h.clients, c)
		}
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Hub) write(c *websocket.Conn, u RegionUpdate) error {
	data, _ := json.Marshal(u)
	h.mu.Lock()
	defer h.mu.Unlock()
	return c.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) readPump(c *websocket.Conn) {
	defer func() {
		h.remove(c)
		_ = c.Close()
	}()
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ws message parse error: %v", err)
			continue
		}
		if h.onMsg != nil {
			h.onMsg(msg)
		}
	}
}

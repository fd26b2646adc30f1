package ws

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Client binds a websocket connection to the authenticated user it serves
type Client struct {
	Conn   *websocket.Conn
	UserID string
}

// Hub fans messages out to connected clients and doubles as the in-process
// change feed: components can subscribe to per-user events (no payload, just
// a signal to re-fetch).
type Hub struct {
	clients     map[*websocket.Conn]string // conn -> user id
	subscribers map[string]map[chan struct{}]struct{}

	Register   chan *Client
	Unregister chan *websocket.Conn
	Broadcast  chan []byte

	mutex sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*websocket.Conn]string),
		subscribers: make(map[string]map[chan struct{}]struct{}),
		Register:    make(chan *Client),
		Unregister:  make(chan *websocket.Conn),
		Broadcast:   make(chan []byte),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client.Conn] = client.UserID
			h.mutex.Unlock()
			log.Println("New WS client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// NotifyUser pushes a message to the user's websocket connections and signals
// every in-process subscriber for that user id
func (h *Hub) NotifyUser(userID string, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, uid := range h.clients {
		if uid != userID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}

	for ch := range h.subscribers[userID] {
		// Non-blocking: a pending signal already guarantees a re-fetch
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscribeUser registers an in-process listener for the user's change feed.
// The returned func tears the subscription down; it must be called when the
// (user, store) key changes or the watcher stops.
func (h *Hub) SubscribeUser(userID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mutex.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan struct{}]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mutex.Unlock()

	cancel := func() {
		h.mutex.Lock()
		if subs, ok := h.subscribers[userID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		h.mutex.Unlock()
	}
	return ch, cancel
}

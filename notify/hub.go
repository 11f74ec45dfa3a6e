package notify

import (
	"sync"
)

// Client is one connected admin browser session.
type Client struct {
	Send chan []byte

	conn writerCloser
}

// writerCloser is the slice of *websocket.Conn the hub needs; narrowed so
// tests can register clients without a network connection.
type writerCloser interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub owns the process-local set of admin connections. All mutation of the
// set happens in Run's goroutine via the channels.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}

		case data := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.Send <- data:
				default:
					// Slow consumer; drop it rather than block the hub.
					close(c.Send)
					delete(h.clients, c)
				}
			}

		case <-h.done:
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			return
		}
	}
}

// Send fans data out to every currently connected client. Clients that are
// gone or saturated are silently dropped; there is no queuing or retry.
func (h *Hub) Send(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Stop closes all connections and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Package ws broadcasts the latest bin assignment to browser overlay
// clients over websockets.  The hub owns the client set on a single
// goroutine; everything else talks to it through channels.
package ws

import (
	"log"

	"github.com/iliyamo/auction-bin-tracker/internal/bus"
)

// Payload is the single-field message every overlay client receives.
type Payload struct {
	Data string `json:"data"`
}

// Hub tracks connected clients and fans broadcast messages out to them.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan string
	clients    map[*Client]bool

	// latest supplies the current assignment string so a client that
	// connects mid-show immediately sees the live value.
	latest func() string
}

// NewHub creates a hub.  Call Run on its own goroutine before serving
// connections.
func NewHub(latest func() string) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan string, 16),
		clients:    make(map[*Client]bool),
		latest:     latest,
	}
}

// Run is the hub loop.  It never returns.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			// greet the new client with the current assignment
			select {
			case c.send <- Payload{Data: h.latest()}:
			default:
			}
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			p := Payload{Data: msg}
			for c := range h.clients {
				select {
				case c.send <- p:
				default:
					// client is not draining its queue; drop it
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(msg string) {
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("ws: broadcast queue full, dropping update")
	}
}

// Name identifies the hub on the state-change bus.
func (h *Hub) Name() string { return "websocket" }

// Deliver implements bus.Sink: assignment changes and resets are pushed to
// the overlay, imports leave the banner alone.
func (h *Hub) Deliver(ev bus.Event) error {
	if ev.Latest != "" {
		h.Broadcast(ev.Latest)
	}
	return nil
}

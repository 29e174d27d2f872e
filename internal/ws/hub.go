// Package ws streams change events to WebSocket clients.
package ws

import (
	"context"
	"encoding/json"

	"ice-breakun/backend/internal/events"
	"ice-breakun/backend/pkg/logger"
)

// Hub tracks connected clients and forwards bus events to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	bus        *events.Bus
	log        *logger.Logger
	origins    []string
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
}

// NewHub creates a hub fed by bus. allowedOrigins restricts browser
// upgrades; "*" or an empty list allows any origin.
func NewHub(bus *events.Bus, log *logger.Logger, allowedOrigins []string) *Hub {
	if log == nil {
		log = logger.GetGlobal()
	}
	return &Hub{
		bus:        bus,
		log:        log.WithComponent("ws"),
		origins:    allowedOrigins,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	feed := h.bus.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug("Client registered", "client", c.id, "user_id", c.userID)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.Debug("Client unregistered", "client", c.id)
			}

		case reply := <-h.count:
			reply <- len(h.clients)

		case e, ok := <-feed:
			if !ok {
				feed = nil
				continue
			}
			h.broadcast(e)
		}
	}
}

func (h *Hub) broadcast(e events.Event) {
	if len(h.clients) == 0 {
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		h.log.LogError(err, "Failed to encode event", "type", e.Type)
		return
	}

	for c := range h.clients {
		if !c.wants(e) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Client cannot keep up; disconnect it
			h.drop(c)
			h.log.Warn("Dropped slow client", "client", c.id)
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

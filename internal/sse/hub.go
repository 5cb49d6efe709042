package sse

import (
	"context"
	"sync"

	"notistore/internal/model"
)

// Client is one SSE subscriber. Ch should be buffered; a full channel makes
// the hub skip the client for that notification.
type Client struct {
	Room string
	Ch   chan model.Notification
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan model.Notification
	rooms      map[string]map[*Client]struct{}
	mu         sync.RWMutex
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan model.Notification, 64),
		rooms:      make(map[string]map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Register and Unregister return immediately once Run has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a notification for fan-out. It reports false when the
// queue is full and the notification was dropped.
func (h *Hub) Broadcast(notification model.Notification) bool {
	select {
	case h.broadcast <- notification:
		return true
	default:
		return false
	}
}

// Clients returns the number of subscribers of a room.
func (h *Hub) Clients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case notification := <-h.broadcast:
			h.broadcastToRoom(notification)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[client.Room] == nil {
		h.rooms[client.Room] = make(map[*Client]struct{})
	}
	h.rooms[client.Room][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[client.Room]
	if room == nil {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.Room)
	}
}

func (h *Hub) broadcastToRoom(notification model.Notification) {
	h.mu.RLock()
	room := h.rooms[notification.Room]
	h.mu.RUnlock()
	for client := range room {
		select {
		case client.Ch <- notification:
		default:
			// Drop if the client is too slow.
		}
	}
}

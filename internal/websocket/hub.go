package websocket

import (
	"errors"
	"sync"

	"github.com/ikkim/maison-backend/pkg/logger"
)

var ErrTooManySessions = errors.New("too many voice sessions")

// Hub tracks connected voice clients and caps how many run at once.
type Hub struct {
	clients     map[string]*Client
	maxSessions int
	mu          sync.RWMutex
}

func NewHub(maxSessions int) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		maxSessions: maxSessions,
	}
}

// Register admits client unless the hub is full.
func (h *Hub) Register(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxSessions > 0 && len(h.clients) >= h.maxSessions {
		logger.Warn("Voice session limit reached", map[string]interface{}{
			"shopper_id": client.ShopperID,
			"limit":      h.maxSessions,
		})
		return ErrTooManySessions
	}
	h.clients[client.ID] = client

	logger.Info("Voice client registered", map[string]interface{}{
		"client_id":      client.ID,
		"shopper_id":     client.ShopperID,
		"total_sessions": len(h.clients),
	})
	return nil
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.ID]
	delete(h.clients, client.ID)
	remaining := len(h.clients)
	h.mu.Unlock()

	if ok {
		logger.Info("Voice client unregistered", map[string]interface{}{
			"client_id":          client.ID,
			"remaining_sessions": remaining,
		})
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown stops every connected session.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Close()
	}
}

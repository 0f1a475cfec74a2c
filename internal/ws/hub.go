package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/pkg/logger"
)

// Event is the envelope pushed to admin dashboard connections.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

// Hub fans order events out to connected admin dashboards.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			logger.Info("Dashboard client connected", map[string]interface{}{
				"customer_id": client.CustomerID,
				"connections": count,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			logger.Info("Dashboard client disconnected", map[string]interface{}{
				"customer_id": client.CustomerID,
				"connections": count,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer, drop the message rather than block the hub
					logger.Warn("Dropping event for slow dashboard client", map[string]interface{}{
						"customer_id": client.CustomerID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishOrderCreated implements service.OrderEventPublisher.
func (h *Hub) PublishOrderCreated(order *model.Order) {
	h.publish(EventOrderCreated, order)
}

// PublishOrderStatusChanged implements service.OrderEventPublisher.
func (h *Hub) PublishOrderStatusChanged(order *model.Order) {
	h.publish(EventOrderStatusChanged, order)
}

func (h *Hub) publish(eventType string, order *model.Order) {
	data, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"total":        order.Total,
			"customer":     order.CustomerName,
			"item_count":   order.ItemCount(),
		},
	})
	if err != nil {
		logger.Error("Failed to marshal order event", err, map[string]interface{}{
			"event": eventType,
		})
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Event broadcast queue full, dropping event", map[string]interface{}{
			"event": eventType,
		})
	}
}

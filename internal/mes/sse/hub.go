// Package sse 看板事件推送。
package sse

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Event 推送给看板客户端的事件
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client 一个已连接的看板客户端
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub 管理所有SSE客户端连接
type Hub struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	clients map[string]*Client
}

// NewHub 创建事件中心
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Info("sse client registered",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID),
		zap.Int("total", len(h.clients)),
	)
}

// Unregister 注销客户端并关闭其事件通道
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Info("sse client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)),
		)
	}
}

// Broadcast 向所有客户端广播事件，缓冲满的客户端跳过
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, dropping event",
				zap.String("client_id", client.ID),
				zap.String("event", event.EventType),
			)
		}
	}
}

// PublishOrderUpdate 广播制造订单状态变更
func (h *Hub) PublishOrderUpdate(orderID, orderNumber, status string) {
	data := fmt.Sprintf(`{"order_id":"%s","order_number":"%s","status":"%s"}`, orderID, orderNumber, status)
	h.Broadcast(Event{EventType: "order_update", Data: data})
}

// PublishWorkOrderUpdate 广播工单状态变更
func (h *Hub) PublishWorkOrderUpdate(orderID, workOrderID, status string) {
	data := fmt.Sprintf(`{"order_id":"%s","work_order_id":"%s","status":"%s"}`, orderID, workOrderID, status)
	h.Broadcast(Event{EventType: "work_order_update", Data: data})
}

// PublishQueueRefreshed 广播队列快照已刷新
func (h *Hub) PublishQueueRefreshed() {
	h.Broadcast(Event{EventType: "queue_refreshed", Data: `{}`})
}

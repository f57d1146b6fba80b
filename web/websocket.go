package web

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"football-analytics/logger"
)

// 广播事件类型
const (
	EventModelUpdated  = "model_updated"
	EventNewPrediction = "new_prediction"
	EventDataUpdated   = "data_updated"
)

// Event 广播给客户端的事件帧
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client WebSocket 客户端
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	channels map[string]bool // 订阅频道过滤器，为空时接收所有事件

	mu sync.Mutex
}

// Hub 维护客户端集合并向所有在线客户端分发事件
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 运行 Hub 的事件循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Printf("Client registered. Total clients: %d", h.ClientCount())

		case client := <-h.unregister:
			h.removeClient(client)
			logger.Printf("Client unregistered. Total clients: %d", h.ClientCount())

		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Broadcast 向所有订阅该事件类型的在线客户端广播
// （实现 services.EventBroadcaster 接口）
func (h *Hub) Broadcast(eventType string, data interface{}) {
	h.broadcast <- &Event{Type: eventType, Data: data}
}

// deliver 序列化一次并发送给每个客户端；发送缓冲已满的客户端被移除，
// 单个客户端的失败不影响其余客户端
func (h *Hub) deliver(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("Failed to marshal event: %v", err)
		return
	}

	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		if !client.subscribed(event.Type) {
			continue
		}

		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		logger.Errorf("Dropping slow client (send buffer full)")
		h.removeClient(client)
	}
}

// removeClient 从集合中移除客户端并关闭其发送通道
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// ClientCount 当前在线客户端数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// subscribed 检查客户端是否订阅了该事件类型
func (c *Client) subscribed(eventType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.channels) == 0 {
		return true
	}
	return c.channels[eventType]
}

// readPump 读取客户端消息，连接断开时注销客户端
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump 向客户端写入消息
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// clientDirective 客户端入站指令
type clientDirective struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// handleMessage 处理客户端发送的指令（订阅 / 取消订阅）
func (c *Client) handleMessage(message []byte) {
	var directive clientDirective
	if err := json.Unmarshal(message, &directive); err != nil {
		logger.Errorf("Invalid client message: %v", err)
		return
	}

	switch directive.Type {
	case "subscribe":
		channels := make(map[string]bool)
		for _, ch := range directive.Channels {
			channels[ch] = true
		}

		c.mu.Lock()
		c.channels = channels
		c.mu.Unlock()

		logger.Printf("Client subscribed to channels: %v", directive.Channels)

	case "unsubscribe":
		c.mu.Lock()
		c.channels = nil
		c.mu.Unlock()

		logger.Println("Client unsubscribed")
	}
}

package websocket

import (
	"context"
	"sync"
	"time"

	"unisphere/pkg/logger"
	"unisphere/pkg/metrics"
	"unisphere/pkg/redis"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 代表一个WebSocket连接的用户
// UserID: 用户ID
// Conn: WebSocket连接
// Send: 发送消息的通道
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient 创建连接，发送缓冲256条
func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn, Send: make(chan []byte, 256)}
}

// Manager 管理所有在线用户的WebSocket连接
// 每个用户保留最新的一个连接；在线状态同步写入 Redis（可选）
type Manager struct {
	clients  map[uint]*Client
	lock     sync.RWMutex
	presence *redis.Presence
}

// NewManager presence 可以为 nil
func NewManager(presence *redis.Presence) *Manager {
	return &Manager{
		clients:  make(map[uint]*Client),
		presence: presence,
	}
}

// AddClient 添加新连接，同一用户的旧连接被替换
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	if old, ok := m.clients[client.UserID]; ok {
		close(old.Send)
	} else {
		metrics.WsConnections.Inc()
	}
	m.clients[client.UserID] = client
	m.lock.Unlock()

	m.updatePresence(client.UserID, true)
}

// RemoveClient 移除连接；已被新连接替换时不做处理
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	current, ok := m.clients[client.UserID]
	if !ok || current != client {
		m.lock.Unlock()
		return
	}
	close(client.Send)
	delete(m.clients, client.UserID)
	metrics.WsConnections.Dec()
	m.lock.Unlock()

	m.updatePresence(client.UserID, false)
}

// SendToUser 推送消息给指定用户，不在线或缓冲已满返回 false
func (m *Manager) SendToUser(userID uint, msg []byte) bool {
	// 持有读锁发送，避免与 RemoveClient 关闭通道并发
	m.lock.RLock()
	defer m.lock.RUnlock()
	client, ok := m.clients[userID]
	if !ok {
		return false
	}
	select {
	case client.Send <- msg:
		return true
	default:
		logger.Warn("推送缓冲已满，丢弃消息", zap.Uint("user_id", userID))
		return false
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// Count 当前连接数
func (m *Manager) Count() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

// Heartbeat 客户端心跳，延长在线状态
func (m *Manager) Heartbeat(userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.presence.Refresh(ctx, userID); err != nil {
		logger.Warn("刷新在线状态失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// CloseAll 关闭全部连接（服务退出时调用）
func (m *Manager) CloseAll() {
	m.lock.Lock()
	clients := m.clients
	m.clients = make(map[uint]*Client)
	for _, c := range clients {
		close(c.Send)
		metrics.WsConnections.Dec()
	}
	m.lock.Unlock()

	for id := range clients {
		m.updatePresence(id, false)
	}
}

func (m *Manager) updatePresence(userID uint, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var err error
	if online {
		err = m.presence.SetOnline(ctx, userID)
	} else {
		err = m.presence.SetOffline(ctx, userID)
	}
	if err != nil {
		logger.Warn("更新在线状态失败", zap.Uint("user_id", userID), zap.Bool("online", online), zap.Error(err))
	}
}

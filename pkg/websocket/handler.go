package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"unisphere/config"
	"unisphere/pkg/jwt"
	"unisphere/pkg/logger"
	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Handler 只用于服务端推送（通知、新私信），客户端只发送心跳
type Handler struct {
	manager    *Manager
	jwtService *jwt.JWTService
	cfg        config.WebSocketConfig
	upgrader   websocket.Upgrader
}

// NewHandler allowedOrigins 为空时允许任意来源
func NewHandler(manager *Manager, jwtService *jwt.JWTService, cfg config.WebSocketConfig, allowedOrigins []string) *Handler {
	h := &Handler{manager: manager, jwtService: jwtService, cfg: cfg}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if len(allowedOrigins) == 0 || origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Serve Gin路由处理函数 GET /ws?token=
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "No token provided")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "Invalid token")
		return
	}
	userID, _ := claims.UserID()

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Debug("WebSocket升级失败", zap.Error(err))
		return
	}

	client := NewClient(userID, conn)
	h.manager.AddClient(client)
	logger.Debug("WebSocket已连接", zap.Uint("user_id", userID))

	defer func() {
		h.manager.RemoveClient(client)
		_ = conn.Close()
		logger.Debug("WebSocket已断开", zap.Uint("user_id", userID))
	}()

	go h.writePump(client)
	h.readPump(client)
}

// writePump 写协程 + 定时发送ping心跳
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	conn := client.Conn
	for {
		select {
		case msg, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道被关闭：连接被替换或服务退出
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				_ = conn.Close()
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump 读协程（接收心跳）。若超时未收到任何读事件则断开
func (h *Handler) readPump(client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type == "heartbeat" {
			h.manager.Heartbeat(client.UserID)
		}
	}
}

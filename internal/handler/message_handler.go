package handler

import (
	"unisphere/internal/service"
	"unisphere/pkg/jwt"
	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息处理器
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler 创建MessageHandler实例
func NewMessageHandler(s *service.MessageService) *MessageHandler {
	return &MessageHandler{service: s}
}

// StartConversation 发起会话，已存在时返回原会话
func (h *MessageHandler) StartConversation(c *gin.Context) {
	type req struct {
		UserID uint `json:"userId"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	id, created, err := h.service.StartConversation(c.Request.Context(), jwt.GetUserID(c), r.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if created {
		response.Created(c, gin.H{"conversationId": id})
		return
	}
	response.OK(c, gin.H{"conversationId": id})
}

// SendMessage 发送消息
func (h *MessageHandler) SendMessage(c *gin.Context) {
	type req struct {
		Content  string `json:"content"`
		ImageURL string `json:"imageUrl"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	msg, err := h.service.SendMessage(c.Request.Context(), jwt.GetUserID(c), parseID(c.Param("id")), r.Content, r.ImageURL)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, msg)
}

// ListMessages 会话消息，按时间正序
func (h *MessageHandler) ListMessages(c *gin.Context) {
	msgs, err := h.service.ListMessages(c.Request.Context(), jwt.GetUserID(c), parseID(c.Param("id")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, msgs)
}

// MarkRead 把对方发来的消息标记为已读
func (h *MessageHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), jwt.GetUserID(c), parseID(c.Param("id"))); err != nil {
		response.FromError(c, err)
		return
	}
	response.Message(c, "Messages marked as read")
}

// Conversations 会话列表
func (h *MessageHandler) Conversations(c *gin.Context) {
	list, err := h.service.ListConversations(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

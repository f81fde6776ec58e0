package handler

import (
	"unisphere/internal/service"
	"unisphere/pkg/jwt"
	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service *service.NotificationService
}

func NewNotificationHandler(s *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// List 最近的通知
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// UnreadCount 未读数
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"count": n})
}

// MarkRead 批量标记已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	type req struct {
		NotificationIDs []uint `json:"notificationIds"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), jwt.GetUserID(c), r.NotificationIDs); err != nil {
		response.FromError(c, err)
		return
	}
	response.Message(c, "Notifications marked as read")
}

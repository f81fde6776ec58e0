package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"unisphere/internal/model"
	"unisphere/internal/repository"
	"unisphere/pkg/logger"
	"unisphere/pkg/metrics"

	"go.uber.org/zap"
)

// 通知列表返回条数
const notificationListLimit = 50

// Pusher 在线推送，用户不在线时返回 false
type Pusher interface {
	SendToUser(userID uint, payload []byte) bool
}

// PushEvent 推送给客户端的统一信封
type PushEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NotificationEvent 主写入提交后需要通知的事件
type NotificationEvent struct {
	Recipient uint
	Actor     uint
	Type      string
	SourceID  uint
	PostID    *uint
}

// NotificationView 通知列表项
type NotificationView struct {
	ID           uint      `json:"id"`
	Type         string    `json:"type"`
	SourceID     uint      `json:"source_id"`
	PostID       *uint     `json:"post_id"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image"`
	Message      string    `json:"message"`
}

// NotificationText 通知类型对应的文案
func NotificationText(kind string) string {
	switch kind {
	case model.NotificationFollow:
		return "started following you"
	case model.NotificationLike:
		return "liked your post"
	case model.NotificationComment:
		return "commented on your post"
	case model.NotificationMessage:
		return "sent you a message"
	default:
		return "interacted with you"
	}
}

type NotificationService struct {
	store  *repository.Store
	pusher Pusher
}

// NewNotificationService pusher 可以为 nil（不做在线推送）
func NewNotificationService(store *repository.Store, pusher Pusher) *NotificationService {
	return &NotificationService{store: store, pusher: pusher}
}

// Notify 写入通知并尝试在线推送
// 调用时主操作已提交：失败只记录日志和指标，不影响调用方结果
func (s *NotificationService) Notify(ctx context.Context, ev NotificationEvent) {
	if s == nil || ev.Recipient == 0 || ev.Recipient == ev.Actor {
		return
	}

	n := &model.Notification{UserID: ev.Recipient, Type: ev.Type, SourceID: ev.SourceID, PostID: ev.PostID}
	if err := s.store.Notifications.Create(ctx, n); err != nil {
		metrics.NotificationFailures.WithLabelValues(ev.Type).Inc()
		logger.Warn("通知写入失败",
			zap.String("type", ev.Type),
			zap.Uint("recipient", ev.Recipient),
			zap.Uint("source_id", ev.SourceID),
			zap.Error(err),
		)
		return
	}

	if s.pusher == nil {
		return
	}
	view := NotificationView{
		ID:        n.ID,
		Type:      n.Type,
		SourceID:  n.SourceID,
		PostID:    n.PostID,
		CreatedAt: n.CreatedAt,
		Message:   NotificationText(n.Type),
	}
	if actor, err := s.store.Users.GetByID(ctx, ev.Actor); err == nil {
		view.Username = actor.Username
		view.ProfileImage = actor.ProfileImage
	}
	s.Push(ev.Recipient, "notification", view)
}

// Push 序列化后推送给在线用户
func (s *NotificationService) Push(userID uint, event string, data interface{}) {
	if s == nil || s.pusher == nil {
		return
	}
	payload, err := json.Marshal(PushEvent{Type: event, Data: data})
	if err != nil {
		logger.Warn("推送序列化失败", zap.String("event", event), zap.Error(err))
		return
	}
	if s.pusher.SendToUser(userID, payload) {
		metrics.WsPushTotal.WithLabelValues(event).Inc()
	}
}

// List 最近50条通知
func (s *NotificationService) List(ctx context.Context, userID uint) ([]NotificationView, error) {
	rows, err := s.store.Notifications.ListRecent(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	views := make([]NotificationView, 0, len(rows))
	for _, r := range rows {
		v := NotificationView{
			ID:        r.ID,
			Type:      r.Type,
			SourceID:  r.SourceID,
			PostID:    r.PostID,
			IsRead:    r.IsRead,
			CreatedAt: r.CreatedAt,
			Message:   NotificationText(r.Type),
		}
		if r.Username != nil {
			v.Username = *r.Username
		}
		if r.ProfileImage != nil {
			v.ProfileImage = *r.ProfileImage
		}
		views = append(views, v)
	}
	return views, nil
}

// UnreadCount 未读通知数
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	n, err := s.store.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

// MarkRead 标记已读，只影响当前用户自己的通知
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) error {
	if ids == nil {
		return ErrNotificationIDs
	}
	if _, err := s.store.Notifications.MarkRead(ctx, userID, ids); err != nil {
		return fmt.Errorf("mark notifications: %w", err)
	}
	return nil
}

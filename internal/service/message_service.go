package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unisphere/internal/model"
	"unisphere/internal/repository"
	"unisphere/pkg/db"

	"gorm.io/gorm"
)

// MessageService 私信会话
type MessageService struct {
	store    *repository.Store
	notifier *NotificationService
}

// NewMessageService 创建MessageService实例
func NewMessageService(store *repository.Store, notifier *NotificationService) *MessageService {
	return &MessageService{store: store, notifier: notifier}
}

// StartConversation 获取或创建与对方的会话，created 表示本次新建
func (s *MessageService) StartConversation(ctx context.Context, userID, otherID uint) (uint, bool, error) {
	if otherID == 0 {
		return 0, false, ErrUserIDRequired
	}
	if otherID == userID {
		return 0, false, ErrSelfConversation
	}

	exists, err := s.store.Users.Exists(ctx, otherID)
	if err != nil {
		return 0, false, fmt.Errorf("find user: %w", err)
	}
	if !exists {
		return 0, false, ErrUserNotFound
	}

	conv, err := s.store.Conversations.FindByPair(ctx, userID, otherID)
	if err == nil {
		return conv.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, fmt.Errorf("find conversation: %w", err)
	}

	conv = &model.Conversation{UserOneID: userID, UserTwoID: otherID}
	if err := s.store.Conversations.Create(ctx, conv); err != nil {
		if !db.IsDuplicateKey(err) {
			return 0, false, fmt.Errorf("create conversation: %w", err)
		}
		// 并发创建：读取对方已写入的会话
		existing, ferr := s.store.Conversations.FindByPair(ctx, userID, otherID)
		if ferr != nil {
			return 0, false, fmt.Errorf("find conversation: %w", ferr)
		}
		return existing.ID, false, nil
	}
	return conv.ID, true, nil
}

// member 校验会话存在且当前用户是参与者
func (s *MessageService) member(ctx context.Context, conversationID, userID uint) (*model.Conversation, error) {
	conv, err := s.store.Conversations.GetByID(ctx, conversationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationGone
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if !conv.HasMember(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

// SendMessage 发送私信，通知并推送给对方
func (s *MessageService) SendMessage(ctx context.Context, userID, conversationID uint, content, imageURL string) (*MessageView, error) {
	if strings.TrimSpace(content) == "" && strings.TrimSpace(imageURL) == "" {
		return nil, ErrMessageEmpty
	}
	conv, err := s.member(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{ConversationID: conv.ID, SenderID: userID, Content: content, ImageURL: imageURL}
	if err := s.store.Messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	row, err := s.store.Messages.GetRow(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("load message: %w", err)
	}

	recipient := conv.Other(userID)
	s.notifier.Notify(ctx, NotificationEvent{
		Recipient: recipient,
		Actor:     userID,
		Type:      model.NotificationMessage,
		SourceID:  conv.ID,
	})
	s.notifier.Push(recipient, "message", newMessageView(*row, recipient))

	view := newMessageView(*row, userID)
	return &view, nil
}

// ListMessages 会话消息，按时间正序
func (s *MessageService) ListMessages(ctx context.Context, userID, conversationID uint) ([]MessageView, error) {
	if _, err := s.member(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	rows, err := s.store.Messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	views := make([]MessageView, 0, len(rows))
	for _, r := range rows {
		views = append(views, newMessageView(r, userID))
	}
	return views, nil
}

// MarkRead 把对方发来的消息标记为已读，自己发出的不受影响
func (s *MessageService) MarkRead(ctx context.Context, userID, conversationID uint) error {
	if _, err := s.member(ctx, conversationID, userID); err != nil {
		return err
	}
	if _, err := s.store.Messages.MarkRead(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// ListConversations 当前用户的会话列表，新建的在前
func (s *MessageService) ListConversations(ctx context.Context, userID uint) ([]ConversationView, error) {
	rows, err := s.store.Conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	views := make([]ConversationView, 0, len(rows))
	for _, r := range rows {
		views = append(views, ConversationView{
			ID: r.ID,
			OtherUser: OtherUser{
				ID:           r.OtherID,
				Username:     r.OtherUsername,
				ProfileImage: r.OtherProfileImage,
			},
			LastMessage: r.LastMessage,
			UnreadCount: r.UnreadCount,
			CreatedAt:   r.CreatedAt,
		})
	}
	return views, nil
}

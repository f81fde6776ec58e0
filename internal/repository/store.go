package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合全部仓储，支持在同一事务中组合多个写操作
type Store struct {
	db *gorm.DB

	Users         *UserRepository
	Otps          *OtpRepository
	Follows       *FollowRepository
	Posts         *PostRepository
	Likes         *LikeRepository
	Comments      *CommentRepository
	Conversations *ConversationRepository
	Messages      *MessageRepository
	Notifications *NotificationRepository
}

// NewStore 基于同一个 *gorm.DB 创建全部仓储
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Otps:          NewOtpRepository(db),
		Follows:       NewFollowRepository(db),
		Posts:         NewPostRepository(db),
		Likes:         NewLikeRepository(db),
		Comments:      NewCommentRepository(db),
		Conversations: NewConversationRepository(db),
		Messages:      NewMessageRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// DB 返回底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction 在事务中执行 fn，fn 内只能使用传入的 tx 仓储
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

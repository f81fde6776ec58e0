package repository

import (
	"context"
	"time"

	"unisphere/internal/model"

	"gorm.io/gorm"
)

// ConversationRow 会话列表项
type ConversationRow struct {
	ID                uint
	CreatedAt         time.Time
	OtherID           uint
	OtherUsername     string
	OtherProfileImage string
	LastMessage       *string
	UnreadCount       int64
}

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// OrderedPair 会话参与者按 (较小ID, 较大ID) 存储
func OrderedPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

func (r *ConversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	conv.UserOneID, conv.UserTwoID = OrderedPair(conv.UserOneID, conv.UserTwoID)
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *ConversationRepository) GetByID(ctx context.Context, id uint) (*model.Conversation, error) {
	var c model.Conversation
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByPair 查找两人之间的会话
func (r *ConversationRepository) FindByPair(ctx context.Context, a, b uint) (*model.Conversation, error) {
	one, two := OrderedPair(a, b)
	var c model.Conversation
	err := r.db.WithContext(ctx).
		Where("user_one_id = ? AND user_two_id = ?", one, two).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForUser 用户参与的会话，附带对方信息、最后一条消息和未读数
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uint) ([]ConversationRow, error) {
	var rows []ConversationRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.created_at,
			u.id AS other_id, u.username AS other_username, u.profile_image AS other_profile_image,
			(SELECT m.content FROM messages m WHERE m.conversation_id = c.id
				ORDER BY m.created_at DESC, m.id DESC LIMIT 1) AS last_message,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id
				AND m.sender_id <> ? AND m.is_read = ?) AS unread_count
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.user_one_id = ? THEN c.user_two_id ELSE c.user_one_id END
		WHERE c.user_one_id = ? OR c.user_two_id = ?
		ORDER BY c.created_at DESC, c.id DESC`,
		userID, false, userID, userID, userID,
	).Scan(&rows).Error
	return rows, err
}

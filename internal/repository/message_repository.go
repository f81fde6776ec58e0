package repository

import (
	"context"
	"time"

	"unisphere/internal/model"

	"gorm.io/gorm"
)

// MessageRow 消息及发送者信息
type MessageRow struct {
	ID             uint
	ConversationID uint
	SenderID       uint
	Content        string
	ImageURL       string
	IsRead         bool
	CreatedAt      time.Time
	Username       string
	ProfileImage   string
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) rows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("messages").
		Select(`messages.id, messages.conversation_id, messages.sender_id, messages.content,
			messages.image_url, messages.is_read, messages.created_at, users.username, users.profile_image`).
		Joins("JOIN users ON users.id = messages.sender_id")
}

// GetRow 单条消息视图
func (r *MessageRepository) GetRow(ctx context.Context, id uint) (*MessageRow, error) {
	var rows []MessageRow
	if err := r.rows(ctx).Where("messages.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListByConversation 会话消息，按时间正序
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]MessageRow, error) {
	var rows []MessageRow
	err := r.rows(ctx).
		Where("messages.conversation_id = ?", conversationID).
		Order("messages.created_at ASC, messages.id ASC").
		Scan(&rows).Error
	return rows, err
}

// MarkRead 将会话中对方发来的未读消息标记为已读
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, readerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

package repository

import (
	"context"
	"time"

	"unisphere/internal/model"

	"gorm.io/gorm"
)

// NotificationRow 通知及触发者信息
// message 类型的 source_id 是会话ID，触发者取会话中除接收者外的另一方
type NotificationRow struct {
	ID           uint
	Type         string
	SourceID     uint
	PostID       *uint
	IsRead       bool
	CreatedAt    time.Time
	Username     *string
	ProfileImage *string
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListRecent 最近的通知，新的在前
func (r *NotificationRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]NotificationRow, error) {
	var rows []NotificationRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT n.id, n.type, n.source_id, n.post_id, n.is_read, n.created_at,
			u.username, u.profile_image
		FROM notifications n
		LEFT JOIN conversations c ON n.type = ? AND c.id = n.source_id
		LEFT JOIN users u ON u.id = CASE
			WHEN n.type = ? THEN (CASE WHEN c.user_one_id = n.user_id THEN c.user_two_id ELSE c.user_one_id END)
			ELSE n.source_id END
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT ?`,
		model.NotificationMessage, model.NotificationMessage, userID, limit,
	).Scan(&rows).Error
	return rows, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead 只更新属于 userID 的通知
func (r *NotificationRepository) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// DeleteByPost 删除关联某条动态的通知
func (r *NotificationRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.Notification{}).Error
}

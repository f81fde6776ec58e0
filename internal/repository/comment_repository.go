package repository

import (
	"context"
	"time"

	"unisphere/internal/model"

	"gorm.io/gorm"
)

// CommentRow 评论及作者信息
type CommentRow struct {
	ID           uint      `json:"id"`
	PostID       uint      `json:"post_id"`
	UserID       uint      `json:"user_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image"`
}

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) rows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("comments").
		Select("comments.id, comments.post_id, comments.user_id, comments.content, comments.created_at, users.username, users.profile_image").
		Joins("JOIN users ON users.id = comments.user_id")
}

// GetRow 单条评论视图
func (r *CommentRepository) GetRow(ctx context.Context, id uint) (*CommentRow, error) {
	var rows []CommentRow
	if err := r.rows(ctx).Where("comments.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListByPost 动态的评论，新的在前
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint) ([]CommentRow, error) {
	rows := []CommentRow{}
	err := r.rows(ctx).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC, comments.id DESC").
		Scan(&rows).Error
	return rows, err
}

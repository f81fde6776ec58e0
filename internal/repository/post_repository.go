package repository

import (
	"context"
	"time"

	"unisphere/internal/model"
	"unisphere/pkg/db"

	"gorm.io/gorm"
)

// PostRow 动态及作者信息、计数
type PostRow struct {
	ID            uint
	UserID        uint
	Caption       string
	ImageURL      string
	CreatedAt     time.Time
	Username      string
	Email         string
	ProfileImage  string
	Bio           string
	LikesCount    int64
	CommentsCount int64
	LikedCount    int64 // 查看者是否点赞（0/1）
}

const postRowColumns = `posts.id, posts.user_id, posts.caption, posts.image_url, posts.created_at,
	users.username, users.email, users.profile_image, users.bio,
	(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
	(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count,
	(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked_count`

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOwned 查询属于 userID 的动态
func (r *PostRepository) GetOwned(ctx context.Context, id, userID uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update 覆盖文字与图片
func (r *PostRepository) Update(ctx context.Context, id uint, caption, imageURL string) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		Updates(map[string]interface{}{"caption": caption, "image_url": imageURL}).Error
}

// Delete 删除动态及其点赞、评论，调用方负责包在事务里
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Post{}, id).Error
}

func (r *PostRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *PostRepository) rows(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).Table("posts").
		Select(postRowColumns, viewerID).
		Joins("JOIN users ON users.id = posts.user_id")
}

// GetRow 单条动态视图
func (r *PostRepository) GetRow(ctx context.Context, id, viewerID uint) (*PostRow, error) {
	var rows []PostRow
	if err := r.rows(ctx, viewerID).Where("posts.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// Feed 自己和已关注用户的动态，新的在前
func (r *PostRepository) Feed(ctx context.Context, userID uint, limit, offset int) ([]PostRow, error) {
	var rows []PostRow
	err := r.rows(ctx, userID).
		Where("posts.user_id = ? OR posts.user_id IN (SELECT following_id FROM followers WHERE follower_id = ?)", userID, userID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// Explore 未关注用户的动态，每次随机排序
func (r *PostRepository) Explore(ctx context.Context, userID uint, limit, offset int) ([]PostRow, error) {
	var rows []PostRow
	q := r.rows(ctx, userID).
		Where("posts.user_id <> ? AND posts.user_id NOT IN (SELECT following_id FROM followers WHERE follower_id = ?)", userID, userID)
	err := q.Order(db.RandomOrder(q)).
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// ByUser 某个用户的动态，新的在前
func (r *PostRepository) ByUser(ctx context.Context, authorID, viewerID uint) ([]PostRow, error) {
	var rows []PostRow
	err := r.rows(ctx, viewerID).
		Where("posts.user_id = ?", authorID).
		Order("posts.created_at DESC, posts.id DESC").
		Scan(&rows).Error
	return rows, err
}

package repository

import (
	"context"

	"unisphere/internal/model"

	"gorm.io/gorm"
)

// FollowUserRow 关注列表中的用户
type FollowUserRow struct {
	ID           uint
	Username     string
	ProfileImage string
	Bio          string
	FollowedBack int64 // 查看者是否关注了该用户（0/1）
}

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Create(ctx context.Context, f *model.Follow) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// Delete 删除关注关系，返回删除行数
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	return res.RowsAffected, res.Error
}

// IsFollowing followerID 是否关注了 followingID
func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	return n > 0, err
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("following_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID).Count(&n).Error
	return n, err
}

// ListFollowers 关注 userID 的人，最新关注在前；FollowedBack 表示 viewerID 是否关注了对方
func (r *FollowRepository) ListFollowers(ctx context.Context, userID, viewerID uint) ([]FollowUserRow, error) {
	var rows []FollowUserRow
	err := r.db.WithContext(ctx).Table("followers AS f").
		Select(`u.id, u.username, u.profile_image, u.bio,
			(SELECT COUNT(*) FROM followers f2 WHERE f2.follower_id = ? AND f2.following_id = u.id) AS followed_back`, viewerID).
		Joins("JOIN users u ON u.id = f.follower_id").
		Where("f.following_id = ?", userID).
		Order("f.created_at DESC, f.id DESC").
		Scan(&rows).Error
	return rows, err
}

// ListFollowing userID 关注的人，最新关注在前
func (r *FollowRepository) ListFollowing(ctx context.Context, userID uint) ([]FollowUserRow, error) {
	var rows []FollowUserRow
	err := r.db.WithContext(ctx).Table("followers AS f").
		Select("u.id, u.username, u.profile_image, u.bio, 1 AS followed_back").
		Joins("JOIN users u ON u.id = f.following_id").
		Where("f.follower_id = ?", userID).
		Order("f.created_at DESC, f.id DESC").
		Scan(&rows).Error
	return rows, err
}

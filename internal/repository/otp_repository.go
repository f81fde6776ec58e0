package repository

import (
	"context"
	"time"

	"unisphere/internal/model"

	"gorm.io/gorm"
)

type OtpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) *OtpRepository {
	return &OtpRepository{db: db}
}

func (r *OtpRepository) Create(ctx context.Context, otp *model.OtpVerification) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// DeleteUnused 删除该邮箱所有未使用的验证码
func (r *OtpRepository) DeleteUnused(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ? AND is_used = ?", email, false).
		Delete(&model.OtpVerification{}).Error
}

// FindValid 查询未使用且未过期的匹配记录（取最新一条）
func (r *OtpRepository) FindValid(ctx context.Context, email, code string, now time.Time) (*model.OtpVerification, error) {
	var otp model.OtpVerification
	err := r.db.WithContext(ctx).
		Where("email = ? AND otp = ? AND is_used = ? AND expires_at > ?", email, code, false, now).
		Order("created_at DESC, id DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// Consume 条件更新 is_used，只有首次消费返回 true
func (r *OtpRepository) Consume(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.OtpVerification{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	return res.RowsAffected == 1, res.Error
}

// PurgeStale 清理已使用的记录以及在 expiredBefore 之前过期的记录
func (r *OtpRepository) PurgeStale(ctx context.Context, expiredBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_used = ? OR expires_at < ?", true, expiredBefore).
		Delete(&model.OtpVerification{})
	return res.RowsAffected, res.Error
}

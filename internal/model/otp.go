package model

import "time"

// OtpVerification 邮箱验证码
// 同一邮箱重新申请时删除旧的未使用记录；IsUsed 只会由 false 变为 true
type OtpVerification struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"type:varchar(255);not null;index;comment:邮箱"`
	Otp       string    `gorm:"type:varchar(6);not null;comment:6位验证码"`
	ExpiresAt time.Time `gorm:"not null;index;comment:过期时间"`
	IsUsed    bool      `gorm:"not null;default:false;comment:是否已使用"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (OtpVerification) TableName() string { return "otp_verifications" }

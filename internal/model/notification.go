package model

import "time"

// 通知类型
const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationMessage = "message"
)

// Notification 通知
// SourceID: follow/like/comment 为触发者用户ID，message 为会话ID
// PostID: like/comment 关联的动态
type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index;comment:接收者"`
	Type      string    `gorm:"type:varchar(20);not null;comment:通知类型"`
	SourceID  uint      `gorm:"not null;comment:来源ID"`
	PostID    *uint     `gorm:"comment:关联动态"`
	IsRead    bool      `gorm:"not null;default:false;index;comment:是否已读"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Notification) TableName() string { return "notifications" }

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{}, &OtpVerification{}, &Follow{}, &Post{}, &Like{},
		&Comment{}, &Conversation{}, &Message{}, &Notification{},
	}
}

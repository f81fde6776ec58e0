package model

import "time"

// User 用户模型
// 用户名、邮箱唯一；密码仅存储bcrypt哈希，不参与JSON序列化
// 仅在消费验证码后创建，因此 IsVerified 默认写入 true
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"type:varchar(50);not null;uniqueIndex;comment:用户名"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex;comment:学校邮箱"`
	Password     string    `gorm:"type:varchar(255);not null;comment:密码哈希"`
	IsVerified   bool      `gorm:"not null;default:false;comment:邮箱是否已验证"`
	Bio          string    `gorm:"type:text;comment:个人简介"`
	ProfileImage string    `gorm:"type:longtext;comment:头像(URL或data URL)"`
	University   string    `gorm:"type:varchar(255);comment:学校"`
	Department   string    `gorm:"type:varchar(255);comment:院系"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
}

func (User) TableName() string { return "users" }

package model

import "time"

// Conversation 两人会话
// UserOneID < UserTwoID，配合唯一索引保证同一对用户只有一个会话
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	UserOneID uint      `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:1;comment:较小的用户ID"`
	UserTwoID uint      `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:2;index;comment:较大的用户ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Conversation) TableName() string { return "conversations" }

// HasMember 判断用户是否为会话参与者
func (c *Conversation) HasMember(userID uint) bool {
	return c.UserOneID == userID || c.UserTwoID == userID
}

// Other 返回另一位参与者
func (c *Conversation) Other(userID uint) uint {
	if c.UserOneID == userID {
		return c.UserTwoID
	}
	return c.UserOneID
}

// Message 私信，文字与图片至少有一个；IsRead 只会由 false 变为 true
type Message struct {
	ID             uint      `gorm:"primaryKey"`
	ConversationID uint      `gorm:"not null;index;comment:会话ID"`
	SenderID       uint      `gorm:"not null;comment:发送者"`
	Content        string    `gorm:"type:text;comment:消息内容"`
	ImageURL       string    `gorm:"type:longtext;comment:图片"`
	IsRead         bool      `gorm:"not null;default:false;comment:是否已读"`
	CreatedAt      time.Time `gorm:"comment:创建时间"`
}

func (Message) TableName() string { return "messages" }

package model

import "time"

// Post 动态，文字与图片至少有一个
type Post struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index;comment:作者"`
	Caption   string    `gorm:"type:text;comment:文字内容"`
	ImageURL  string    `gorm:"type:longtext;comment:图片(URL或data URL)"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

func (Post) TableName() string { return "posts" }

// Like 点赞，(post_id, user_id) 唯一
type Like struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_pair,priority:1;comment:动态ID"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_pair,priority:2;comment:点赞用户"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Like) TableName() string { return "likes" }

// Comment 评论
type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;index;comment:动态ID"`
	UserID    uint      `gorm:"not null;comment:评论者"`
	Content   string    `gorm:"type:text;not null;comment:评论内容"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Comment) TableName() string { return "comments" }

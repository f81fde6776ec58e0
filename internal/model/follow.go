package model

import "time"

// Follow 关注关系（有向）：FollowerID 关注 FollowingID
// (follower_id, following_id) 唯一，避免并发重复关注
type Follow struct {
	ID          uint      `gorm:"primaryKey"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair,priority:1;comment:关注者"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair,priority:2;index;comment:被关注者"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
}

func (Follow) TableName() string { return "followers" }

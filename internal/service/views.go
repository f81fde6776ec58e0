package service

import (
	"time"

	"unisphere/internal/repository"
)

// UserSummary 嵌在动态中的作者信息
type UserSummary struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image"`
	Bio          string `json:"bio"`
}

// PostView 动态
type PostView struct {
	ID            uint        `json:"id"`
	Caption       string      `json:"caption"`
	ImageURL      string      `json:"image_url"`
	CreatedAt     time.Time   `json:"created_at"`
	LikesCount    int64       `json:"likes_count"`
	CommentsCount int64       `json:"comments_count"`
	Liked         bool        `json:"liked"`
	User          UserSummary `json:"user"`
}

func newPostView(r repository.PostRow) PostView {
	return PostView{
		ID:            r.ID,
		Caption:       r.Caption,
		ImageURL:      r.ImageURL,
		CreatedAt:     r.CreatedAt,
		LikesCount:    r.LikesCount,
		CommentsCount: r.CommentsCount,
		Liked:         r.LikedCount > 0,
		User: UserSummary{
			ID:           r.UserID,
			Username:     r.Username,
			Email:        r.Email,
			ProfileImage: r.ProfileImage,
			Bio:          r.Bio,
		},
	}
}

func newPostViews(rows []repository.PostRow) []PostView {
	views := make([]PostView, 0, len(rows))
	for _, r := range rows {
		views = append(views, newPostView(r))
	}
	return views
}

// PostPage 分页动态
type PostPage struct {
	Posts   []PostView `json:"posts"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	HasMore bool       `json:"hasMore"`
}

// FollowUser 关注/粉丝列表项
type FollowUser struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
	Bio          string `json:"bio"`
	IsFollowing  bool   `json:"isFollowing"`
}

func newFollowUsers(rows []repository.FollowUserRow) []FollowUser {
	users := make([]FollowUser, 0, len(rows))
	for _, r := range rows {
		users = append(users, FollowUser{
			ID:           r.ID,
			Username:     r.Username,
			ProfileImage: r.ProfileImage,
			Bio:          r.Bio,
			IsFollowing:  r.FollowedBack > 0,
		})
	}
	return users
}

// SuggestedUser 推荐关注
type SuggestedUser struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
	Bio          string `json:"bio"`
}

// Stats 关注统计
type Stats struct {
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
	PostsCount     int64 `json:"postsCount"`
	IsFollowing    bool  `json:"isFollowing"`
}

// MessageView 私信
type MessageView struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	SenderID       uint      `json:"sender_id"`
	Content        string    `json:"content"`
	ImageURL       string    `json:"image_url"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
	Username       string    `json:"username"`
	ProfileImage   string    `json:"profile_image"`
	IsSent         bool      `json:"isSent"`
}

func newMessageView(r repository.MessageRow, viewerID uint) MessageView {
	return MessageView{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		Content:        r.Content,
		ImageURL:       r.ImageURL,
		IsRead:         r.IsRead,
		CreatedAt:      r.CreatedAt,
		Username:       r.Username,
		ProfileImage:   r.ProfileImage,
		IsSent:         r.SenderID == viewerID,
	}
}

// OtherUser 会话中的对方
type OtherUser struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
}

// ConversationView 会话列表项
type ConversationView struct {
	ID          uint      `json:"id"`
	OtherUser   OtherUser `json:"otherUser"`
	LastMessage *string   `json:"lastMessage"`
	UnreadCount int64     `json:"unreadCount"`
	CreatedAt   time.Time `json:"created_at"`
}

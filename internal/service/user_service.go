package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"unisphere/internal/model"
	"unisphere/internal/repository"
	"unisphere/pkg/db"

	"gorm.io/gorm"
)

const (
	defaultSuggestions = 5
	maxSuggestions     = 50

	defaultUniversity = "Chitkara University"
	defaultDepartment = "CSE"
)

// ProfileUpdate 资料修改，nil 字段保持不变
type ProfileUpdate struct {
	Username     *string `json:"username"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profile_image"`
	University   *string `json:"university"`
	Department   *string `json:"department"`
}

// ProfileStats 主页统计
type ProfileStats struct {
	PostsCount     int64 `json:"postsCount"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

// Profile 用户主页
type Profile struct {
	ID           uint         `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	Bio          string       `json:"bio"`
	ProfileImage string       `json:"profile_image"`
	University   string       `json:"university"`
	Department   string       `json:"department"`
	CreatedAt    time.Time    `json:"created_at"`
	Stats        ProfileStats `json:"stats"`
	IsFollowing  bool         `json:"isFollowing"`
	IsOwnProfile bool         `json:"isOwnProfile"`
}

type UserService struct {
	store   *repository.Store
	follows *FollowService
}

func NewUserService(store *repository.Store, follows *FollowService) *UserService {
	return &UserService{store: store, follows: follows}
}

// UpdateProfile 修改当前用户资料
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*model.User, error) {
	fields := map[string]interface{}{}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if !validUsername(username) {
			return nil, ErrUsernameLength
		}
		taken, err := s.store.Users.UsernameTaken(ctx, username, userID)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		fields["username"] = username
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.ProfileImage != nil {
		fields["profile_image"] = *in.ProfileImage
	}
	if in.University != nil {
		fields["university"] = *in.University
	}
	if in.Department != nil {
		fields["department"] = *in.Department
	}
	if len(fields) == 0 {
		return nil, ErrNoProfileField
	}

	if err := s.store.Users.Update(ctx, userID, fields); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	user, err := s.store.Users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ProfileByUsername 按用户名查看主页
func (s *UserService) ProfileByUsername(ctx context.Context, viewerID uint, username string) (*Profile, error) {
	user, err := s.store.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	st, err := s.follows.Stats(ctx, user.ID, viewerID)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Bio:          user.Bio,
		ProfileImage: user.ProfileImage,
		University:   user.University,
		Department:   user.Department,
		CreatedAt:    user.CreatedAt,
		Stats: ProfileStats{
			PostsCount:     st.PostsCount,
			FollowersCount: st.FollowersCount,
			FollowingCount: st.FollowingCount,
		},
		IsFollowing:  st.IsFollowing,
		IsOwnProfile: user.ID == viewerID,
	}
	if p.University == "" {
		p.University = defaultUniversity
	}
	if p.Department == "" {
		p.Department = defaultDepartment
	}
	return p, nil
}

// Suggestions 推荐关注，limit 默认5，最大50
func (s *UserService) Suggestions(ctx context.Context, userID uint, limit int) ([]SuggestedUser, error) {
	if limit <= 0 {
		limit = defaultSuggestions
	}
	if limit > maxSuggestions {
		limit = maxSuggestions
	}
	users, err := s.store.Users.Suggestions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}
	out := make([]SuggestedUser, 0, len(users))
	for _, u := range users {
		out = append(out, SuggestedUser{ID: u.ID, Username: u.Username, ProfileImage: u.ProfileImage, Bio: u.Bio})
	}
	return out, nil
}

package service

import (
	"context"
	"fmt"

	"unisphere/internal/model"
	"unisphere/internal/repository"
	"unisphere/pkg/db"
)

// FollowService 关注关系
type FollowService struct {
	store    *repository.Store
	notifier *NotificationService
}

func NewFollowService(store *repository.Store, notifier *NotificationService) *FollowService {
	return &FollowService{store: store, notifier: notifier}
}

// ToggleFollow 已关注则取关，否则关注；返回操作后的关注状态
func (s *FollowService) ToggleFollow(ctx context.Context, userID, targetID uint) (bool, error) {
	if targetID == 0 {
		return false, ErrUserIDRequired
	}
	if targetID == userID {
		return false, ErrSelfFollow
	}

	exists, err := s.store.Users.Exists(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("find user: %w", err)
	}
	if !exists {
		return false, ErrUserNotFound
	}

	removed, err := s.store.Follows.Delete(ctx, userID, targetID)
	if err != nil {
		return false, fmt.Errorf("unfollow: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	if err := s.store.Follows.Create(ctx, &model.Follow{FollowerID: userID, FollowingID: targetID}); err != nil {
		// 并发的重复关注：关系已存在，不再重复通知
		if db.IsDuplicateKey(err) {
			return true, nil
		}
		return false, fmt.Errorf("follow: %w", err)
	}

	s.notifier.Notify(ctx, NotificationEvent{
		Recipient: targetID,
		Actor:     userID,
		Type:      model.NotificationFollow,
		SourceID:  userID,
	})
	return true, nil
}

// ListFollowers 粉丝列表，isFollowing 表示查看者是否关注了对方
func (s *FollowService) ListFollowers(ctx context.Context, userID, viewerID uint) ([]FollowUser, error) {
	rows, err := s.store.Follows.ListFollowers(ctx, userID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return newFollowUsers(rows), nil
}

// ListFollowing 关注列表
func (s *FollowService) ListFollowing(ctx context.Context, userID uint) ([]FollowUser, error) {
	rows, err := s.store.Follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return newFollowUsers(rows), nil
}

// Stats 粉丝数、关注数、动态数以及查看者是否已关注
func (s *FollowService) Stats(ctx context.Context, userID, viewerID uint) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.FollowersCount, err = s.store.Follows.CountFollowers(ctx, userID); err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	if st.FollowingCount, err = s.store.Follows.CountFollowing(ctx, userID); err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}
	if st.PostsCount, err = s.store.Posts.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if st.IsFollowing, err = s.store.Follows.IsFollowing(ctx, viewerID, userID); err != nil {
		return nil, fmt.Errorf("check following: %w", err)
	}
	return &st, nil
}

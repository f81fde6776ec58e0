package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unisphere/internal/model"
	"unisphere/internal/repository"
	"unisphere/pkg/db"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage page 从1开始；limit 超出 1..100 时使用默认值
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}

// PostService 动态、点赞与评论
type PostService struct {
	store    *repository.Store
	notifier *NotificationService
}

func NewPostService(store *repository.Store, notifier *NotificationService) *PostService {
	return &PostService{store: store, notifier: notifier}
}

func (s *PostService) view(ctx context.Context, postID, viewerID uint) (*PostView, error) {
	row, err := s.store.Posts.GetRow(ctx, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	v := newPostView(*row)
	return &v, nil
}

// Create 发布动态，文字与图片至少有一个
func (s *PostService) Create(ctx context.Context, userID uint, caption, imageURL string) (*PostView, error) {
	if strings.TrimSpace(caption) == "" && strings.TrimSpace(imageURL) == "" {
		return nil, ErrPostEmpty
	}
	post := &model.Post{UserID: userID, Caption: caption, ImageURL: imageURL}
	if err := s.store.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.view(ctx, post.ID, userID)
}

// Update 修改自己的动态，未提供的字段写为空，但不能两者都为空
func (s *PostService) Update(ctx context.Context, userID, postID uint, caption, imageURL string) (*PostView, error) {
	if postID == 0 {
		return nil, ErrPostIDRequired
	}
	if strings.TrimSpace(caption) == "" && strings.TrimSpace(imageURL) == "" {
		return nil, ErrPostEmpty
	}
	if _, err := s.owned(ctx, postID, userID); err != nil {
		return nil, err
	}
	if err := s.store.Posts.Update(ctx, postID, caption, imageURL); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.view(ctx, postID, userID)
}

// Delete 删除自己的动态及其点赞、评论、相关通知
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	if postID == 0 {
		return ErrPostIDRequired
	}
	if _, err := s.owned(ctx, postID, userID); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Notifications.DeleteByPost(ctx, postID); err != nil {
			return fmt.Errorf("delete post notifications: %w", err)
		}
		if err := tx.Posts.Delete(ctx, postID); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

// owned 动态不存在与不属于当前用户返回同一错误
func (s *PostService) owned(ctx context.Context, postID, userID uint) (*model.Post, error) {
	post, err := s.store.Posts.GetOwned(ctx, postID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

func (s *PostService) find(ctx context.Context, postID uint) (*model.Post, error) {
	if postID == 0 {
		return nil, ErrPostIDRequired
	}
	post, err := s.store.Posts.GetByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

// Feed 自己和已关注用户的动态
func (s *PostService) Feed(ctx context.Context, userID uint, page, limit int) (*PostPage, error) {
	page, limit = normalizePage(page, limit)
	rows, err := s.store.Posts.Feed(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return &PostPage{Posts: newPostViews(rows), Page: page, Limit: limit, HasMore: len(rows) == limit}, nil
}

// Explore 未关注用户的动态，随机排序
func (s *PostService) Explore(ctx context.Context, userID uint, page, limit int) (*PostPage, error) {
	page, limit = normalizePage(page, limit)
	rows, err := s.store.Posts.Explore(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}
	return &PostPage{Posts: newPostViews(rows), Page: page, Limit: limit, HasMore: len(rows) == limit}, nil
}

// UserPosts 某个用户的全部动态
func (s *PostService) UserPosts(ctx context.Context, viewerID, authorID uint) ([]PostView, error) {
	if authorID == 0 {
		return nil, ErrUserIDRequired
	}
	rows, err := s.store.Posts.ByUser(ctx, authorID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("user posts: %w", err)
	}
	return newPostViews(rows), nil
}

// ToggleLike 点赞/取消点赞，返回操作后的状态
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.find(ctx, postID)
	if err != nil {
		return false, err
	}

	removed, err := s.store.Likes.Delete(ctx, postID, userID)
	if err != nil {
		return false, fmt.Errorf("unlike: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	if err := s.store.Likes.Create(ctx, &model.Like{PostID: postID, UserID: userID}); err != nil {
		if db.IsDuplicateKey(err) {
			return true, nil
		}
		return false, fmt.Errorf("like: %w", err)
	}

	s.notifier.Notify(ctx, NotificationEvent{
		Recipient: post.UserID,
		Actor:     userID,
		Type:      model.NotificationLike,
		SourceID:  userID,
		PostID:    &post.ID,
	})
	return true, nil
}

// AddComment 发表评论
func (s *PostService) AddComment(ctx context.Context, userID, postID uint, content string) (*repository.CommentRow, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrCommentEmpty
	}
	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{PostID: postID, UserID: userID, Content: content}
	if err := s.store.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.notifier.Notify(ctx, NotificationEvent{
		Recipient: post.UserID,
		Actor:     userID,
		Type:      model.NotificationComment,
		SourceID:  userID,
		PostID:    &post.ID,
	})

	row, err := s.store.Comments.GetRow(ctx, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	return row, nil
}

// ListComments 动态的评论，新的在前
func (s *PostService) ListComments(ctx context.Context, postID uint) ([]repository.CommentRow, error) {
	if _, err := s.find(ctx, postID); err != nil {
		return nil, err
	}
	rows, err := s.store.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return rows, nil
}

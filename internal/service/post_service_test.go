package service

import (
	"context"
	"errors"
	"testing"

	"unisphere/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{2, 10, 2, 10},
		{-3, 101, 1, 20},
		{1, 100, 1, 100},
	}
	for _, tt := range tests {
		page, limit := normalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestCreateAndOwnership(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewPostService(store, NewNotificationService(store, nil))
	alice, bob := createUser(t, store, "alice"), createUser(t, store, "bob")

	_, err := svc.Create(ctx, alice.ID, "  ", "")
	assert.True(t, errors.Is(err, ErrPostEmpty))

	post, err := svc.Create(ctx, alice.ID, "hello campus", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", post.User.Username)
	assert.Equal(t, "alice@chitkara.edu.in", post.User.Email)

	// 非作者修改、删除与不存在的动态返回同一错误
	_, err = svc.Update(ctx, bob.ID, post.ID, "hijack", "")
	assert.True(t, errors.Is(err, ErrPostNotOwned))
	assert.Equal(t, 404, err.(*AppError).HTTPStatus())
	assert.True(t, errors.Is(svc.Delete(ctx, bob.ID, post.ID), ErrPostNotOwned))
	assert.True(t, errors.Is(svc.Delete(ctx, alice.ID, 9999), ErrPostNotOwned))
	assert.True(t, errors.Is(svc.Delete(ctx, alice.ID, 0), ErrPostIDRequired))

	// 修改后文字与图片不能同时为空
	_, err = svc.Update(ctx, alice.ID, post.ID, "", " ")
	assert.True(t, errors.Is(err, ErrPostEmpty))
	unchanged, err := svc.Feed(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, unchanged.Posts, 1)
	assert.Equal(t, "hello campus", unchanged.Posts[0].Caption)

	updated, err := svc.Update(ctx, alice.ID, post.ID, "", "https://img.example.com/a.png")
	require.NoError(t, err)
	assert.Empty(t, updated.Caption)
	assert.Equal(t, "https://img.example.com/a.png", updated.ImageURL)

	require.NoError(t, svc.Delete(ctx, alice.ID, post.ID))
	_, err = svc.ToggleLike(ctx, bob.ID, post.ID)
	assert.True(t, errors.Is(err, ErrPostNotFound))
}

func TestFeedExploreVisibility(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	notifier := NewNotificationService(store, nil)
	posts := NewPostService(store, notifier)
	follows := NewFollowService(store, notifier)
	alice, bob, carol := createUser(t, store, "alice"), createUser(t, store, "bob"), createUser(t, store, "carol")

	_, err := follows.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = posts.Create(ctx, alice.ID, "alice post", "")
	require.NoError(t, err)
	bobPost, err := posts.Create(ctx, bob.ID, "bob post", "")
	require.NoError(t, err)
	carolPost, err := posts.Create(ctx, carol.ID, "carol post", "")
	require.NoError(t, err)

	feed, err := posts.Feed(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)
	assert.Equal(t, 1, feed.Page)
	assert.Equal(t, 20, feed.Limit)
	assert.Equal(t, bobPost.ID, feed.Posts[0].ID)
	assert.False(t, feed.HasMore)

	feed, err = posts.Feed(ctx, alice.ID, 1, 1)
	require.NoError(t, err)
	assert.Len(t, feed.Posts, 1)
	assert.Equal(t, 1, feed.Limit)
	assert.True(t, feed.HasMore)

	explore, err := posts.Explore(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, explore.Posts, 1)
	assert.Equal(t, carolPost.ID, explore.Posts[0].ID)
	assert.Equal(t, 20, explore.Limit)

	mine, err := posts.UserPosts(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "alice post", mine[0].Caption)
}

func TestToggleLikeNotifiesOwnerOnly(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	notifier := NewNotificationService(store, nil)
	svc := NewPostService(store, notifier)
	alice, bob := createUser(t, store, "alice"), createUser(t, store, "bob")
	post, err := svc.Create(ctx, alice.ID, "like me", "")
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	n, err := notifier.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "liking your own post does not notify")

	liked, err = svc.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	views, err := notifier.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, model.NotificationLike, views[0].Type)
	assert.Equal(t, bob.ID, views[0].SourceID)
	require.NotNil(t, views[0].PostID)
	assert.Equal(t, post.ID, *views[0].PostID)

	feed, err := svc.Feed(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, int64(2), feed.Posts[0].LikesCount)
	assert.True(t, feed.Posts[0].Liked)

	liked, err = svc.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	notifier := NewNotificationService(store, nil)
	svc := NewPostService(store, notifier)
	alice, bob := createUser(t, store, "alice"), createUser(t, store, "bob")
	post, err := svc.Create(ctx, alice.ID, "discuss", "")
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, bob.ID, post.ID, "   ")
	assert.True(t, errors.Is(err, ErrCommentEmpty))
	_, err = svc.AddComment(ctx, bob.ID, 9999, "hi")
	assert.True(t, errors.Is(err, ErrPostNotFound))

	c, err := svc.AddComment(ctx, bob.ID, post.ID, "first!")
	require.NoError(t, err)
	assert.Equal(t, "bob", c.Username)

	list, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first!", list[0].Content)

	views, err := notifier.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "commented on your post", views[0].Message)

	// 删除动态时一并删除评论与相关通知
	require.NoError(t, svc.Delete(ctx, alice.ID, post.ID))
	views, err = notifier.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"unisphere/config"
	"unisphere/internal/model"
	"unisphere/pkg/db"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestStore 内存 sqlite，单连接保证所有查询看到同一个库
func newTestStore(t *testing.T) *Store {
	t.Helper()
	p := db.NewProviderWithDialector(config.DatabaseConfig{MaxIdle: 1, MaxOpen: 1}, sqlite.Open(":memory:"))
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.AutoMigrate(model.All()...))
	gdb, err := p.Get()
	require.NoError(t, err)
	return NewStore(gdb)
}

func mustUser(t *testing.T, s *Store, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@chitkara.edu.in", Password: "hash", IsVerified: true}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func mustPost(t *testing.T, s *Store, userID uint, caption string) *model.Post {
	t.Helper()
	p := &model.Post{UserID: userID, Caption: caption}
	require.NoError(t, s.Posts.Create(context.Background(), p))
	return p
}

func TestUserUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, "alice")

	err := s.Users.Create(ctx, &model.User{Username: "alice", Email: "other@chitkara.edu.in", Password: "x"})
	assert.True(t, db.IsDuplicateKey(err))

	exists, err := s.Users.ExistsByEmailOrUsername(ctx, "alice@chitkara.edu.in", "nobody")
	require.NoError(t, err)
	assert.True(t, exists)

	taken, err := s.Users.UsernameTaken(ctx, "alice", 999)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestOtpConsumeOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	otp := &model.OtpVerification{Email: "a@chitkara.edu.in", Otp: "123456", ExpiresAt: now.Add(10 * time.Minute)}
	require.NoError(t, s.Otps.Create(ctx, otp))

	found, err := s.Otps.FindValid(ctx, "a@chitkara.edu.in", "123456", now)
	require.NoError(t, err)
	assert.Equal(t, otp.ID, found.ID)

	ok, err := s.Otps.Consume(ctx, otp.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Otps.Consume(ctx, otp.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second consume must not affect a row")

	_, err = s.Otps.FindValid(ctx, "a@chitkara.edu.in", "123456", now)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestOtpExpiredAndPurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Otps.Create(ctx, &model.OtpVerification{Email: "b@chitkara.edu.in", Otp: "111111", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Otps.Create(ctx, &model.OtpVerification{Email: "b@chitkara.edu.in", Otp: "222222", ExpiresAt: now.Add(time.Minute)}))

	_, err := s.Otps.FindValid(ctx, "b@chitkara.edu.in", "111111", now)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	n, err := s.Otps.PurgeStale(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.Otps.DeleteUnused(ctx, "b@chitkara.edu.in"))
	_, err = s.Otps.FindValid(ctx, "b@chitkara.edu.in", "222222", now)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFollowEdgeIsUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, b := mustUser(t, s, "alice"), mustUser(t, s, "bob")

	require.NoError(t, s.Follows.Create(ctx, &model.Follow{FollowerID: a.ID, FollowingID: b.ID}))
	err := s.Follows.Create(ctx, &model.Follow{FollowerID: a.ID, FollowingID: b.ID})
	assert.True(t, db.IsDuplicateKey(err))

	n, err := s.Follows.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	followers, err := s.Follows.ListFollowers(ctx, b.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)
	assert.Zero(t, followers[0].FollowedBack)

	removed, err := s.Follows.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestFeedAndExploreVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, b, c := mustUser(t, s, "alice"), mustUser(t, s, "bob"), mustUser(t, s, "carol")
	require.NoError(t, s.Follows.Create(ctx, &model.Follow{FollowerID: a.ID, FollowingID: b.ID}))

	own := mustPost(t, s, a.ID, "mine")
	followed := mustPost(t, s, b.ID, "bob's")
	stranger := mustPost(t, s, c.ID, "carol's")
	require.NoError(t, s.Likes.Create(ctx, &model.Like{PostID: followed.ID, UserID: a.ID}))

	feed, err := s.Posts.Feed(ctx, a.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, followed.ID, feed[0].ID, "newest first")
	assert.Equal(t, own.ID, feed[1].ID)
	assert.Equal(t, int64(1), feed[0].LikesCount)
	assert.Equal(t, int64(1), feed[0].LikedCount)
	assert.Equal(t, "bob", feed[0].Username)

	explore, err := s.Posts.Explore(ctx, a.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, explore, 1)
	assert.Equal(t, stranger.ID, explore[0].ID)
}

func TestDeletePostRemovesChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice")
	p := mustPost(t, s, a.ID, "bye")
	require.NoError(t, s.Likes.Create(ctx, &model.Like{PostID: p.ID, UserID: a.ID}))
	require.NoError(t, s.Comments.Create(ctx, &model.Comment{PostID: p.ID, UserID: a.ID, Content: "hi"}))

	require.NoError(t, s.Transaction(ctx, func(tx *Store) error {
		return tx.Posts.Delete(ctx, p.ID)
	}))

	_, err := s.Posts.GetByID(ctx, p.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	liked, err := s.Likes.Exists(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	comments, err := s.Comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestConversationPairAndUnread(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, b := mustUser(t, s, "alice"), mustUser(t, s, "bob")

	conv := &model.Conversation{UserOneID: b.ID, UserTwoID: a.ID}
	require.NoError(t, s.Conversations.Create(ctx, conv))
	assert.Equal(t, a.ID, conv.UserOneID)

	err := s.Conversations.Create(ctx, &model.Conversation{UserOneID: a.ID, UserTwoID: b.ID})
	assert.True(t, db.IsDuplicateKey(err))

	found, err := s.Conversations.FindByPair(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	require.NoError(t, s.Messages.Create(ctx, &model.Message{ConversationID: conv.ID, SenderID: a.ID, Content: "hi"}))
	require.NoError(t, s.Messages.Create(ctx, &model.Message{ConversationID: conv.ID, SenderID: b.ID, Content: "hey"}))

	rows, err := s.Conversations.ListForUser(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].OtherID)
	assert.Equal(t, "bob", rows[0].OtherUsername)
	require.NotNil(t, rows[0].LastMessage)
	assert.Equal(t, "hey", *rows[0].LastMessage)
	assert.Equal(t, int64(1), rows[0].UnreadCount)

	n, err := s.Messages.MarkRead(ctx, conv.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	msgs, err := s.Messages.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.False(t, msgs[0].IsRead, "alice's own message stays unread")
	assert.True(t, msgs[1].IsRead)
}

func TestNotificationsScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, b := mustUser(t, s, "alice"), mustUser(t, s, "bob")

	mine := &model.Notification{UserID: a.ID, Type: model.NotificationFollow, SourceID: b.ID}
	theirs := &model.Notification{UserID: b.ID, Type: model.NotificationFollow, SourceID: a.ID}
	require.NoError(t, s.Notifications.Create(ctx, mine))
	require.NoError(t, s.Notifications.Create(ctx, theirs))

	n, err := s.Notifications.MarkRead(ctx, a.ID, []uint{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unread, err := s.Notifications.CountUnread(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	rows, err := s.Notifications.ListRecent(ctx, a.ID, 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Username)
	assert.Equal(t, "bob", *rows[0].Username)
	assert.True(t, rows[0].IsRead)
}

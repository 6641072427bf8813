package store

import (
	"bitwise74/emotube/internal/model"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Comment{},
		&model.Like{},
		&model.Subscription{},
		&model.HistoryEntry{},
	))

	return New(db)
}

func mustUser(t *testing.T, s *Store, name string) *model.User {
	t.Helper()

	u := &model.User{Username: name, PasswordHash: "x", DisplayName: name}
	require.NoError(t, s.CreateUser(context.Background(), u))

	return u
}

func mustVideo(t *testing.T, s *Store, owner uint, title string) *model.Video {
	t.Helper()

	v := &model.Video{UserID: owner, Title: title, Filename: title + ".mp4", Thumb: title + ".png"}
	require.NoError(t, s.CreateVideo(context.Background(), v))

	return v
}

func count(t *testing.T, s *Store, m any, where string, args ...any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, s.DB.Model(m).Where(where, args...).Count(&n).Error)

	return n
}

func TestCreateUserTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &model.User{Username: "alice", PasswordHash: "x"}))

	err := s.CreateUser(ctx, &model.User{Username: "alice", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")

	got, err := s.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FirstAdmin(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")

	prev, err := s.UpdateProfile(ctx, u.ID, "Alice", "hi", "a.png")
	require.NoError(t, err)
	assert.Empty(t, prev)

	prev, err = s.UpdateProfile(ctx, u.ID, "Alice B", "", "")
	require.NoError(t, err)
	assert.Empty(t, prev, "keeping the avatar replaces nothing")

	prev, err = s.UpdateProfile(ctx, u.ID, "Alice B", "", "b.png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", prev)

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.DisplayName)
	assert.Equal(t, "b.png", got.Avatar)
}

func TestSetLikeOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	v := mustVideo(t, s, u.ID, "clip")

	require.NoError(t, s.SetLike(ctx, v.ID, u.ID, true))
	require.NoError(t, s.SetLike(ctx, v.ID, u.ID, false))

	assert.Equal(t, int64(1), count(t, s, &model.Like{}, "video_id = ? AND user_id = ?", v.ID, u.ID))

	counts, err := s.LikeCounts(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LikeCounts{Likes: 0, Dislikes: 1}, counts)

	require.NoError(t, s.SetLike(ctx, v.ID, u.ID, true))

	counts, err = s.LikeCounts(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LikeCounts{Likes: 1, Dislikes: 0}, counts)
}

func TestToggleSubscription(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice")
	b := mustUser(t, s, "bob")

	for i, want := range []bool{true, false, true} {
		subscribed, err := s.ToggleSubscription(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, want, subscribed, "toggle %d", i)

		is, err := s.IsSubscribed(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, want, is)
	}

	subs, err := s.Subscriptions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "bob", subs[0].Username)

	n, err := s.SubscriberCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIncrementViews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	v := mustVideo(t, s, u.ID, "clip")

	for range 3 {
		require.NoError(t, s.IncrementViews(ctx, v.ID))
	}

	got, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Views)

	assert.ErrorIs(t, s.IncrementViews(ctx, 999), ErrNotFound)
}

func TestFeed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "Bob")

	mustVideo(t, s, alice.ID, "Funny Cat")
	mustVideo(t, s, bob.ID, "dog")
	v := &model.Video{UserID: alice.ID, Title: "misc", Description: "a CAT again", Filename: "m.mp4"}
	require.NoError(t, s.CreateVideo(ctx, v))

	all, err := s.Feed(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "misc", all[0].Title, "newest first")

	cats, err := s.Feed(ctx, "cat")
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	byOwner, err := s.Feed(ctx, "BOB")
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, "Bob", byOwner[0].Username)

	none, err := s.Feed(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, none, "wildcards are matched literally")
}

func TestFeedIsCapped(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, "alice")

	videos := make([]model.Video, feedLimit+5)
	for i := range videos {
		videos[i] = model.Video{UserID: u.ID, Title: fmt.Sprintf("v%d", i), Filename: "x.mp4"}
	}
	require.NoError(t, s.DB.CreateInBatches(videos, 50).Error)

	got, err := s.Feed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, feedLimit)
}

func TestCommentsAndHistoryOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	v := mustVideo(t, s, u.ID, "clip")

	require.NoError(t, s.AddComment(ctx, &model.Comment{VideoID: v.ID, UserID: u.ID, Text: "first"}))
	require.NoError(t, s.AddComment(ctx, &model.Comment{VideoID: v.ID, UserID: u.ID, Text: "second"}))

	comments, err := s.CommentsByVideo(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "alice", comments[0].Username)

	require.NoError(t, s.RecordHistory(ctx, u.ID, v.ID))
	time.Sleep(time.Millisecond)
	require.NoError(t, s.RecordHistory(ctx, u.ID, v.ID))

	history, err := s.History(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2, "repeat watches are kept")
	assert.Equal(t, "clip", history[0].Title)
	assert.True(t, !history[0].WatchedAt.Before(history[1].WatchedAt))
}

func TestDeleteVideoCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	v := mustVideo(t, s, u.ID, "clip")
	other := mustVideo(t, s, u.ID, "other")

	require.NoError(t, s.AddComment(ctx, &model.Comment{VideoID: v.ID, UserID: u.ID, Text: "hi"}))
	require.NoError(t, s.SetLike(ctx, v.ID, u.ID, true))
	require.NoError(t, s.RecordHistory(ctx, u.ID, v.ID))
	require.NoError(t, s.RecordHistory(ctx, u.ID, other.ID))

	deleted, err := s.DeleteVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", deleted.Filename)

	_, err = s.VideoByID(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, count(t, s, &model.Comment{}, "video_id = ?", v.ID))
	assert.Zero(t, count(t, s, &model.Like{}, "video_id = ?", v.ID))
	assert.Zero(t, count(t, s, &model.HistoryEntry{}, "video_id = ?", v.ID))
	assert.Equal(t, int64(1), count(t, s, &model.HistoryEntry{}, "video_id = ?", other.ID))

	_, err = s.DeleteVideo(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	aliceVideo := mustVideo(t, s, alice.ID, "alice-clip")
	bobVideo := mustVideo(t, s, bob.ID, "bob-clip")

	// Alice's activity on Bob's video and Bob's activity on Alice's video
	require.NoError(t, s.AddComment(ctx, &model.Comment{VideoID: bobVideo.ID, UserID: alice.ID, Text: "nice"}))
	require.NoError(t, s.AddComment(ctx, &model.Comment{VideoID: aliceVideo.ID, UserID: bob.ID, Text: "cool"}))
	require.NoError(t, s.SetLike(ctx, bobVideo.ID, alice.ID, true))
	require.NoError(t, s.SetLike(ctx, aliceVideo.ID, bob.ID, true))
	require.NoError(t, s.RecordHistory(ctx, alice.ID, bobVideo.ID))
	require.NoError(t, s.RecordHistory(ctx, bob.ID, aliceVideo.ID))
	_, err := s.ToggleSubscription(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = s.ToggleSubscription(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	deleted, videos, err := s.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.Username)
	require.Len(t, videos, 1)
	assert.Equal(t, aliceVideo.ID, videos[0].ID)

	_, err = s.UserByID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, count(t, s, &model.Video{}, "user_id = ?", alice.ID))
	assert.Zero(t, count(t, s, &model.Comment{}, "user_id = ? OR video_id = ?", alice.ID, aliceVideo.ID))
	assert.Zero(t, count(t, s, &model.Like{}, "user_id = ? OR video_id = ?", alice.ID, aliceVideo.ID))
	assert.Zero(t, count(t, s, &model.HistoryEntry{}, "user_id = ? OR video_id = ?", alice.ID, aliceVideo.ID))
	assert.Zero(t, count(t, s, &model.Subscription{}, "subscriber_id = ? OR channel_id = ?", alice.ID, alice.ID))

	// Bob keeps his own video
	_, err = s.VideoByID(ctx, bobVideo.ID)
	assert.NoError(t, err)

	_, _, err = s.DeleteUser(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

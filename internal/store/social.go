package store

import (
	"bitwise74/emotube/internal/model"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) AddComment(ctx context.Context, c *model.Comment) error {
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to add comment, %w", err)
	}

	return nil
}

func (s *Store) CommentsByVideo(ctx context.Context, videoID uint) ([]model.CommentView, error) {
	comments := []model.CommentView{}

	err := s.DB.WithContext(ctx).
		Table("comments").
		Select("comments.id, comments.text, comments.created_at, users.username").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.video_id = ?", videoID).
		Order("comments.created_at desc, comments.id desc").
		Scan(&comments).
		Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}

// SetLike stores a like or dislike, replacing the user's previous choice on
// the same video. The unique (video_id, user_id) index makes this a single
// upsert.
func (s *Store) SetLike(ctx context.Context, videoID, userID uint, isLike bool) error {
	l := model.Like{
		VideoID:   videoID,
		UserID:    userID,
		IsLike:    isLike,
		CreatedAt: time.Now(),
	}

	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "video_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_like", "created_at"}),
		}).
		Create(&l).
		Error
	if err != nil {
		return fmt.Errorf("failed to set like, %w", err)
	}

	return nil
}

func (s *Store) LikeCounts(ctx context.Context, videoID uint) (model.LikeCounts, error) {
	var counts model.LikeCounts

	err := s.DB.WithContext(ctx).
		Model(&model.Like{}).
		Select(
			"COALESCE(SUM(CASE WHEN is_like THEN 1 ELSE 0 END), 0) AS likes, "+
				"COALESCE(SUM(CASE WHEN is_like THEN 0 ELSE 1 END), 0) AS dislikes",
		).
		Where("video_id = ?", videoID).
		Scan(&counts).
		Error

	return counts, err
}

// ToggleSubscription subscribes when no subscription exists and unsubscribes
// otherwise. Returns whether the subscriber is subscribed afterwards.
func (s *Store) ToggleSubscription(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	var subscribed bool

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
			Delete(&model.Subscription{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			subscribed = false
			return nil
		}

		subscribed = true
		return tx.Create(&model.Subscription{
			SubscriberID: subscriberID,
			ChannelID:    channelID,
		}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle subscription, %w", err)
	}

	return subscribed, nil
}

func (s *Store) IsSubscribed(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	var n int64

	err := s.DB.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&n).
		Error

	return n > 0, err
}

// Subscriptions returns the channels the user is subscribed to
func (s *Store) Subscriptions(ctx context.Context, subscriberID uint) ([]model.User, error) {
	var users []model.User

	err := s.DB.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.channel_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("subscriptions.created_at desc, subscriptions.id desc").
		Find(&users).
		Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (s *Store) SubscriberCount(ctx context.Context, channelID uint) (int64, error) {
	var n int64

	err := s.DB.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&n).
		Error

	return n, err
}

// RecordHistory appends a watch event. Repeated watches are kept.
func (s *Store) RecordHistory(ctx context.Context, userID, videoID uint) error {
	err := s.DB.WithContext(ctx).Create(&model.HistoryEntry{
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: time.Now(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to record history, %w", err)
	}

	return nil
}

func (s *Store) History(ctx context.Context, userID uint) ([]model.HistoryView, error) {
	var entries []model.HistoryView

	err := s.DB.WithContext(ctx).
		Table("history").
		Select("history.id, history.video_id, history.watched_at, videos.title").
		Joins("JOIN videos ON videos.id = history.video_id").
		Where("history.user_id = ?", userID).
		Order("history.watched_at desc, history.id desc").
		Limit(historyLimit).
		Scan(&entries).
		Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

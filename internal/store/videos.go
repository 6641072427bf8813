package store

import (
	"bitwise74/emotube/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const feedColumns = "videos.*, users.username AS username"

func (s *Store) CreateVideo(ctx context.Context, v *model.Video) error {
	if err := s.DB.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create video, %w", err)
	}

	return nil
}

func (s *Store) VideoByID(ctx context.Context, id uint) (*model.Video, error) {
	var v model.Video

	err := s.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&v).
		Error
	if err != nil {
		return nil, notFound(err)
	}

	return &v, nil
}

func (s *Store) feedQuery(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Table("videos").
		Select(feedColumns).
		Joins("JOIN users ON users.id = videos.user_id")
}

// FeedVideo returns a single video joined with its owner's username
func (s *Store) FeedVideo(ctx context.Context, id uint) (*model.FeedVideo, error) {
	var v model.FeedVideo

	err := s.feedQuery(ctx).
		Where("videos.id = ?", id).
		Take(&v).
		Error
	if err != nil {
		return nil, notFound(err)
	}

	return &v, nil
}

// Feed lists the newest videos. A non-empty query keeps only videos whose
// title, description or owner username contain it, ignoring case.
func (s *Store) Feed(ctx context.Context, query string) ([]model.FeedVideo, error) {
	var videos []model.FeedVideo

	q := s.feedQuery(ctx)

	if query = strings.TrimSpace(query); query != "" {
		like := "%" + escapeLike(strings.ToLower(query)) + "%"
		q = q.Where(
			"LOWER(videos.title) LIKE ? ESCAPE '\\' OR LOWER(videos.description) LIKE ? ESCAPE '\\' OR LOWER(users.username) LIKE ? ESCAPE '\\'",
			like, like, like,
		)
	}

	err := q.
		Order("videos.created_at desc, videos.id desc").
		Limit(feedLimit).
		Scan(&videos).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to query feed, %w", err)
	}

	return videos, nil
}

func (s *Store) VideosByUser(ctx context.Context, userID uint) ([]model.Video, error) {
	var videos []model.Video

	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&videos).
		Error
	if err != nil {
		return nil, err
	}

	return videos, nil
}

// ListVideos returns every video with its owner, used by the admin panel
func (s *Store) ListVideos(ctx context.Context) ([]model.FeedVideo, error) {
	var videos []model.FeedVideo

	err := s.feedQuery(ctx).
		Order("videos.created_at desc, videos.id desc").
		Scan(&videos).
		Error
	if err != nil {
		return nil, err
	}

	return videos, nil
}

// IncrementViews bumps the view counter by exactly one
func (s *Store) IncrementViews(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).
		Model(&model.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteVideo removes the video together with its comments, likes and history
// rows. The deleted row is returned so the caller can remove its media.
func (s *Store) DeleteVideo(ctx context.Context, id uint) (*model.Video, error) {
	var v model.Video

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&v).Error; err != nil {
			return notFound(err)
		}

		return deleteVideoRows(tx, []uint{id})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to delete video, %w", err)
	}

	return &v, nil
}

func deleteVideoRows(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	if err := tx.Where("video_id IN ?", ids).Delete(&model.Comment{}).Error; err != nil {
		return err
	}

	if err := tx.Where("video_id IN ?", ids).Delete(&model.Like{}).Error; err != nil {
		return err
	}

	if err := tx.Where("video_id IN ?", ids).Delete(&model.HistoryEntry{}).Error; err != nil {
		return err
	}

	return tx.Where("id IN ?", ids).Delete(&model.Video{}).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

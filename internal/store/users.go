package store

import (
	"bitwise74/emotube/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// CreateUser inserts u and fills its ID. The unique index on username is the
// only duplicate check, so concurrent registrations can't both succeed.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return ErrUsernameTaken
		}

		return fmt.Errorf("failed to create user, %w", err)
	}

	return nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User

	err := s.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&u).
		Error
	if err != nil {
		return nil, notFound(err)
	}

	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := s.DB.WithContext(ctx).
		Where("username = ?", username).
		First(&u).
		Error
	if err != nil {
		return nil, notFound(err)
	}

	return &u, nil
}

// UpdateProfile sets the display name and bio. An empty avatar keeps the
// current one. The previous avatar name is returned when it was replaced.
func (s *Store) UpdateProfile(ctx context.Context, id uint, displayName, bio, avatar string) (string, error) {
	var previous string

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.Select("id", "avatar").Where("id = ?", id).First(&u).Error; err != nil {
			return notFound(err)
		}

		updates := map[string]any{
			"display_name": displayName,
			"bio":          bio,
		}

		if avatar != "" {
			updates["avatar"] = avatar
			previous = u.Avatar
		}

		return tx.Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return "", err
	}

	return previous, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	err := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).
		Error
	if err != nil {
		return fmt.Errorf("failed to update password hash, %w", err)
	}

	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User

	err := s.DB.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&users).
		Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// DeleteUser removes a user and everything they own: their videos (with the
// comments, likes and history on them), their own comments, likes and history,
// and subscriptions in both directions. The removed videos are returned so the
// caller can delete the backing media.
func (s *Store) DeleteUser(ctx context.Context, id uint) (*model.User, []model.Video, error) {
	var (
		u      model.User
		videos []model.Video
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
			return notFound(err)
		}

		if err := tx.Where("user_id = ?", id).Find(&videos).Error; err != nil {
			return err
		}

		ids := make([]uint, len(videos))
		for i, v := range videos {
			ids[i] = v.ID
		}

		if err := deleteVideoRows(tx, ids); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&model.HistoryEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Where("subscriber_id = ? OR channel_id = ?", id, id).Delete(&model.Subscription{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&model.User{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}

		return nil, nil, fmt.Errorf("failed to delete user, %w", err)
	}

	return &u, videos, nil
}

// FirstAdmin returns the oldest account holding the admin flag
func (s *Store) FirstAdmin(ctx context.Context) (*model.User, error) {
	var u model.User

	err := s.DB.WithContext(ctx).
		Where("is_admin = ?", true).
		Order("id asc").
		First(&u).
		Error
	if err != nil {
		return nil, notFound(err)
	}

	return &u, nil
}

package model

import "time"

// Like stores a single like or dislike. A user has at most one row per video,
// submitting again overwrites IsLike.
type Like struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   uint      `gorm:"not null;uniqueIndex:uq_like_video_user" json:"video_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uq_like_video_user;index" json:"user_id"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
}

type LikeCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

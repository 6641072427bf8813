package model

import "time"

type Video struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Both are random storage names and never the client supplied file names
	Filename  string    `json:"filename"`
	Thumb     string    `json:"thumb"`
	Views     int64     `gorm:"default:0" json:"views"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// FeedVideo is a video joined with its owner's username
type FeedVideo struct {
	Video
	Username string `json:"username"`
}

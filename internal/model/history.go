package model

import "time"

// HistoryEntry is appended on every watch, duplicates included
type HistoryEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	VideoID   uint      `gorm:"index;not null" json:"video_id"`
	WatchedAt time.Time `gorm:"index" json:"watched_at"`
}

func (HistoryEntry) TableName() string {
	return "history"
}

type HistoryView struct {
	ID        uint      `json:"id"`
	VideoID   uint      `json:"video_id"`
	Title     string    `json:"title"`
	WatchedAt time.Time `json:"watched_at"`
}

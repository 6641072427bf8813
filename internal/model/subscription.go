package model

import "time"

type Subscription struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:uq_subscriber_channel" json:"subscriber_id"`
	ChannelID    uint      `gorm:"not null;uniqueIndex:uq_subscriber_channel;index" json:"channel_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

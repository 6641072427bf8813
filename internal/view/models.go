package view

import (
	"bitwise74/emotube/internal/model"
	"time"
)

// Page carries what the layout needs on every page
type Page struct {
	Brand string
	Title string
	User  *model.User
	Flash string
}

type VideoCard struct {
	ID          uint
	Title       string
	Description string
	UserID      uint
	Username    string
	Views       int64
	CreatedAt   time.Time
	ThumbURL    string
	VideoURL    string
}

type EnterPage struct {
	Page
	Question string
}

type FeedPage struct {
	Page
	Query            string
	Videos           []VideoCard
	RegisterQuestion string
}

type ProfilePage struct {
	Page
	Channel     *model.User
	AvatarURL   string
	Videos      []VideoCard
	Subscribers int64
	Subscribed  bool
	Own         bool
}

type EditProfilePage struct {
	Page
	DisplayName string
	Bio         string
}

type SubsPage struct {
	Page
	Channels []model.User
}

type HistoryPage struct {
	Page
	Entries []model.HistoryView
}

type AdminPage struct {
	Page
	Users  []model.User
	Videos []VideoCard
}

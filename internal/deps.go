package internal

import (
	"bitwise74/emotube/config"
	"bitwise74/emotube/internal/model"
	"bitwise74/emotube/internal/service"
	"bitwise74/emotube/internal/storage"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/internal/view"
	"bitwise74/emotube/pkg/middleware"
	"bitwise74/emotube/pkg/security"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Store    *store.Store
	Argon    *security.ArgonHash
	Sessions *security.SessionManager
	Media    storage.Store
	Thumbs   *service.Thumbnailer
	Uploader *service.Uploader
}

// Page builds the layout data shared by every rendered page. It consumes the
// pending flash message.
func (d *Deps) Page(c *gin.Context, title string) view.Page {
	return view.Page{
		Brand: d.Config.App.Brand,
		Title: title,
		User:  middleware.CurrentUser(c),
		Flash: middleware.TakeFlash(c),
	}
}

// ThumbURL falls back to the generated placeholder for videos without one
func (d *Deps) ThumbURL(v *model.Video) string {
	if v.Thumb == "" {
		return "/static_placeholder"
	}

	return d.Media.URL(storage.ThumbKey(v.Thumb))
}

func (d *Deps) Card(v *model.Video, username string) view.VideoCard {
	return view.VideoCard{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		UserID:      v.UserID,
		Username:    username,
		Views:       v.Views,
		CreatedAt:   v.CreatedAt,
		ThumbURL:    d.ThumbURL(v),
		VideoURL:    d.Media.URL(storage.VideoKey(v.Filename)),
	}
}

func (d *Deps) Cards(videos []model.FeedVideo) []view.VideoCard {
	cards := make([]view.VideoCard, len(videos))
	for i := range videos {
		cards[i] = d.Card(&videos[i].Video, videos[i].Username)
	}

	return cards
}

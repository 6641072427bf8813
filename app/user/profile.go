package user

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/model"
	"bitwise74/emotube/internal/storage"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/internal/view"
	"bitwise74/emotube/pkg/middleware"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserProfile renders a channel page
func UserProfile(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	channel, err := d.Store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.SetFlash(c, "User not found")
			c.Redirect(http.StatusFound, "/")
			return
		}

		c.String(http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to look up channel", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	renderProfile(c, d, channel)
}

// UserMyProfile renders the logged in user's own channel page
func UserMyProfile(c *gin.Context, d *internal.Deps) {
	renderProfile(c, d, middleware.CurrentUser(c))
}

func renderProfile(c *gin.Context, d *internal.Deps, channel *model.User) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()
	viewer := middleware.CurrentUser(c)

	videos, err := d.Store.VideosByUser(ctx, channel.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to list channel videos", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	subscribers, err := d.Store.SubscriberCount(ctx, channel.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to count subscribers", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	page := view.ProfilePage{
		Page:        d.Page(c, channel.Name()),
		Channel:     channel,
		Subscribers: subscribers,
		Videos:      make([]view.VideoCard, len(videos)),
	}

	for i := range videos {
		page.Videos[i] = d.Card(&videos[i], channel.Username)
	}

	if channel.Avatar != "" {
		page.AvatarURL = d.Media.URL(storage.AvatarKey(channel.Avatar))
	}

	if viewer != nil {
		page.Own = viewer.ID == channel.ID

		if !page.Own {
			page.Subscribed, err = d.Store.IsSubscribed(ctx, viewer.ID, channel.ID)
			if err != nil {
				zap.L().Error("Failed to check subscription", zap.Error(err), zap.String("requestID", requestID))
			}
		}
	}

	c.HTML(http.StatusOK, "profile.html", page)
}

func UserEditProfileForm(c *gin.Context, d *internal.Deps) {
	u := middleware.CurrentUser(c)

	c.HTML(http.StatusOK, "edit_profile.html", view.EditProfilePage{
		Page:        d.Page(c, "Edit profile"),
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
	})
}

// Package admin contains the handlers behind the admin flag
package admin

import (
	"bitwise74/emotube/app/video"
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/internal/view"
	"bitwise74/emotube/pkg/middleware"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func AdminPanel(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	users, err := d.Store.ListUsers(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to list users", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	videos, err := d.Store.ListVideos(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to list videos", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.HTML(http.StatusOK, "admin.html", view.AdminPage{
		Page:   d.Page(c, "Admin"),
		Users:  users,
		Videos: d.Cards(videos),
	})
}

func formID(c *gin.Context, key string) (uint, bool) {
	id, err := strconv.ParseUint(c.PostForm(key), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

func AdminDeleteVideo(c *gin.Context, d *internal.Deps) {
	id, ok := formID(c, "video_id")
	if !ok {
		middleware.SetFlash(c, "Invalid video ID")
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	deleted, err := video.DeleteVideo(c, d, id)
	switch {
	case err != nil:
		middleware.SetFlash(c, "Failed to delete video")
	case !deleted:
		middleware.SetFlash(c, "Video not found")
	default:
		middleware.SetFlash(c, "Video deleted")
	}

	c.Redirect(http.StatusFound, "/admin")
}

func AdminDeleteUser(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	id, ok := formID(c, "user_id")
	if !ok {
		middleware.SetFlash(c, "Invalid user ID")
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	if id == middleware.CurrentUser(c).ID {
		middleware.SetFlash(c, "You can't delete your own account from the admin panel")
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	deleted, videos, err := d.Store.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.SetFlash(c, "User not found")
		} else {
			zap.L().Error("Failed to delete user", zap.Error(err), zap.String("requestID", requestID))
			middleware.SetFlash(c, "Failed to delete user")
		}

		c.Redirect(http.StatusFound, "/admin")
		return
	}

	d.Uploader.RemoveVideoMedia(ctx, videos...)
	d.Uploader.RemoveAvatar(ctx, deleted.Avatar)

	zap.L().Info("User deleted by admin", zap.Uint("userID", deleted.ID), zap.String("requestID", requestID))

	middleware.SetFlash(c, "User deleted")
	c.Redirect(http.StatusFound, "/admin")
}

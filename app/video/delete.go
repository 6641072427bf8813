package video

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/pkg/middleware"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VideoDelete lets the owner or an admin remove a video
func VideoDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)

	id, ok := parseID(c.Param("id"))
	if !ok {
		middleware.SetFlash(c, "Video not found")
		c.Redirect(http.StatusFound, "/")
		return
	}

	v, err := d.Store.VideoByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			zap.L().Error("Failed to look up video", zap.Error(err), zap.String("requestID", requestID))
		}

		middleware.SetFlash(c, "Video not found")
		c.Redirect(http.StatusFound, "/")
		return
	}

	if v.UserID != u.ID && !u.IsAdmin {
		middleware.SetFlash(c, "You can only delete your own videos")
		c.Redirect(http.StatusFound, "/")
		return
	}

	if _, err := DeleteVideo(c, d, id); err != nil {
		middleware.SetFlash(c, "Failed to delete video")
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteVideo removes the row with its comments, likes and history and then
// the stored media. Shared with the admin panel.
func DeleteVideo(c *gin.Context, d *internal.Deps, id uint) (bool, error) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	v, err := d.Store.DeleteVideo(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}

		zap.L().Error("Failed to delete video", zap.Error(err), zap.String("requestID", requestID))
		return false, err
	}

	d.Uploader.RemoveVideoMedia(ctx, *v)

	zap.L().Info("Video deleted", zap.Uint("videoID", v.ID), zap.String("requestID", requestID))
	return true, nil
}

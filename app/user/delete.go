package user

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserDelete removes the logged in account with all of its data
func UserDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)

	deleted, videos, err := d.Store.DeleteUser(ctx, u.ID)
	if err != nil {
		zap.L().Error("Failed to delete account", zap.Error(err), zap.String("requestID", requestID))

		middleware.SetFlash(c, "Failed to delete account")
		c.Redirect(http.StatusFound, "/profile")
		return
	}

	d.Uploader.RemoveVideoMedia(ctx, videos...)
	d.Uploader.RemoveAvatar(ctx, deleted.Avatar)

	zap.L().Info("Account deleted", zap.Uint("userID", deleted.ID), zap.Int("videos", len(videos)), zap.String("requestID", requestID))

	middleware.Logout(c)
	middleware.SetFlash(c, "Your account was deleted")
	c.Redirect(http.StatusFound, "/enter")
}

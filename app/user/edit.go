package user

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/pkg/middleware"
	"bitwise74/emotube/pkg/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxAvatarSize = 5 << 20

type editBody struct {
	DisplayName string `form:"display_name"`
	Bio         string `form:"bio"`
}

func UserEditProfile(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)

	var data editBody
	if err := c.ShouldBind(&data); err != nil {
		middleware.SetFlash(c, "Invalid form")
		c.Redirect(http.StatusFound, "/edit_profile")
		return
	}

	data.DisplayName = strings.TrimSpace(data.DisplayName)
	data.Bio = strings.TrimSpace(data.Bio)

	if err := validators.Profile(data.DisplayName, data.Bio); err != nil {
		middleware.SetFlash(c, err.Error())
		c.Redirect(http.StatusFound, "/edit_profile")
		return
	}

	var avatar string

	// An absent avatar field keeps the current one
	if fh, err := c.FormFile("avatar"); err == nil && fh.Filename != "" {
		code, ext, f, err := validators.ImageFile(fh, maxAvatarSize)
		if err != nil {
			if code == http.StatusInternalServerError {
				zap.L().Error("Failed to read avatar", zap.Error(err), zap.String("requestID", requestID))
			}

			middleware.SetFlash(c, err.Error())
			c.Redirect(http.StatusFound, "/edit_profile")
			return
		}
		defer f.Close()

		avatar, err = d.Uploader.SaveAvatar(ctx, f, fh.Size, ext)
		if err != nil {
			zap.L().Error("Failed to store avatar", zap.Error(err), zap.String("requestID", requestID))

			middleware.SetFlash(c, "Failed to save avatar")
			c.Redirect(http.StatusFound, "/edit_profile")
			return
		}
	} else if err != nil && !errors.Is(err, http.ErrMissingFile) {
		zap.L().Debug("Ignoring malformed avatar field", zap.Error(err), zap.String("requestID", requestID))
	}

	previous, err := d.Store.UpdateProfile(ctx, u.ID, data.DisplayName, data.Bio, avatar)
	if err != nil {
		d.Uploader.RemoveAvatar(ctx, avatar)
		zap.L().Error("Failed to update profile", zap.Error(err), zap.String("requestID", requestID))

		middleware.SetFlash(c, "Failed to update profile")
		c.Redirect(http.StatusFound, "/edit_profile")
		return
	}

	d.Uploader.RemoveAvatar(ctx, previous)

	middleware.SetFlash(c, "Profile updated")
	c.Redirect(http.StatusFound, "/profile")
}

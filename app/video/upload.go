// Package video contains the handlers for videos and everything attached to
// them: comments, likes, subscriptions and views
package video

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/pkg/middleware"
	"bitwise74/emotube/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func VideoUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusForbidden, gin.H{
			"ok":        false,
			"error":     "Please log in first",
			"requestID": requestID,
		})
		return
	}

	title := c.PostForm("title")
	desc := c.PostForm("description")

	if err := validators.Title(title); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	fh, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     validators.ErrNoFile.Error(),
			"requestID": requestID,
		})

		zap.L().Debug("Failed to read video form file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	code, ext, err := validators.VideoFile(fh, d.Config.Upload.MaxBytes())
	if err != nil {
		c.JSON(code, gin.H{
			"ok":        false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	v, err := d.Uploader.Do(c.Request.Context(), fh, ext, title, desc, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Failed to save video",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload video", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"id": v.ID,
	})
}

package video

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/model"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/pkg/middleware"
	"bitwise74/emotube/pkg/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func CommentsFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"comments": []model.CommentView{}})
		return
	}

	comments, err := d.Store.CommentsByVideo(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list comments", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func CommentAdd(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)

	text := strings.TrimSpace(c.PostForm("text"))
	if err := validators.CommentText(text); err != nil {
		middleware.SetFlash(c, err.Error())
		c.Redirect(http.StatusFound, "/")
		return
	}

	id, ok := parseID(c.PostForm("video_id"))
	if !ok {
		middleware.SetFlash(c, "Video not found")
		c.Redirect(http.StatusFound, "/")
		return
	}

	if _, err := d.Store.VideoByID(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			zap.L().Error("Failed to look up video", zap.Error(err), zap.String("requestID", requestID))
		}

		middleware.SetFlash(c, "Video not found")
		c.Redirect(http.StatusFound, "/")
		return
	}

	err := d.Store.AddComment(ctx, &model.Comment{
		VideoID: id,
		UserID:  u.ID,
		Text:    text,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to add comment", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}

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

// VideoLike stores a like, or a dislike when type is "dislike". Liking again
// replaces the previous choice.
func VideoLike(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusForbidden, gin.H{
			"ok":        false,
			"error":     "login",
			"requestID": requestID,
		})
		return
	}

	id, ok := parseID(c.PostForm("video_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     "Invalid video ID",
			"requestID": requestID,
		})
		return
	}

	if _, err := d.Store.VideoByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"ok":        false,
				"error":     "not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up video", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	isLike := c.DefaultPostForm("type", "like") != "dislike"

	if err := d.Store.SetLike(ctx, id, u.ID, isLike); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store like", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}

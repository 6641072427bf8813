package video

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/storage"
	"bitwise74/emotube/internal/store"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

func VideoFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "not found",
			"requestID": requestID,
		})
		return
	}

	v, err := d.Store.FeedVideo(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch video", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	counts, err := d.Store.LikeCounts(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count likes", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video": gin.H{
			"id":          v.ID,
			"title":       v.Title,
			"description": v.Description,
			"filename":    v.Filename,
			"views":       v.Views,
			"user_id":     v.UserID,
			"username":    v.Username,
			"created_at":  v.CreatedAt,
			"url":         d.Media.URL(storage.VideoKey(v.Filename)),
			"thumb_url":   d.ThumbURL(&v.Video),
			"likes":       counts.Likes,
			"dislikes":    counts.Dislikes,
		},
	})
}

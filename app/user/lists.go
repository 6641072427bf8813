package user

import (
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

func UserSubscriptions(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	u := middleware.CurrentUser(c)

	channels, err := d.Store.Subscriptions(c.Request.Context(), u.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to list subscriptions", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.HTML(http.StatusOK, "subs.html", view.SubsPage{
		Page:     d.Page(c, "Subscriptions"),
		Channels: channels,
	})
}

func UserHistory(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	u := middleware.CurrentUser(c)

	entries, err := d.Store.History(c.Request.Context(), u.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to list history", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.HTML(http.StatusOK, "history.html", view.HistoryPage{
		Page:    d.Page(c, "History"),
		Entries: entries,
	})
}

// UserRecordHistory appends a watch event. Anonymous viewers and requests
// without a video are accepted and ignored.
func UserRecordHistory(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	u := middleware.CurrentUser(c)

	raw := c.PostForm("video_id")
	if u == nil || raw == "" {
		c.Status(http.StatusNoContent)
		return
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     "Invalid video ID",
			"requestID": requestID,
		})
		return
	}

	ctx := c.Request.Context()

	if _, err := d.Store.VideoByID(ctx, uint(id)); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			zap.L().Error("Failed to look up video", zap.Error(err), zap.String("requestID", requestID))
		}

		// Unknown videos are not recorded
		c.Status(http.StatusNoContent)
		return
	}

	if err := d.Store.RecordHistory(ctx, u.ID, uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to record history", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}

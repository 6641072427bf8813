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

// VideoWatch counts a view and returns to the feed
func VideoWatch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	id, ok := parseID(c.Param("id"))
	if !ok {
		middleware.SetFlash(c, "Video not found")
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := d.Store.IncrementViews(c.Request.Context(), id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			zap.L().Error("Failed to count view", zap.Error(err), zap.String("requestID", requestID))
		}

		middleware.SetFlash(c, "Video not found")
	}

	c.Redirect(http.StatusFound, "/")
}

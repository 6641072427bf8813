package feed

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/view"
	"bitwise74/emotube/pkg/middleware"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Index renders the feed, filtered by the q parameter. Visitors who haven't
// passed the entry challenge are sent to it first.
func Index(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	if !middleware.GetSession(c).CaptchaOK {
		c.Redirect(http.StatusFound, "/enter")
		return
	}

	q := strings.TrimSpace(c.Query("q"))

	videos, err := d.Store.Feed(c.Request.Context(), q)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to load feed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.HTML(http.StatusOK, "feed.html", view.FeedPage{
		Page:             d.Page(c, ""),
		Query:            q,
		Videos:           d.Cards(videos),
		RegisterQuestion: d.Config.Captcha.RegisterQuestion,
	})
}

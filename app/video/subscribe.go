package video

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/pkg/middleware"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChannelSubscribe toggles the viewer's subscription to a channel and sends
// them back where they came from
func ChannelSubscribe(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)
	back := referrer(c)

	id, ok := parseID(c.PostForm("channel_id"))
	if !ok {
		middleware.SetFlash(c, "Channel not found")
		c.Redirect(http.StatusFound, back)
		return
	}

	if id == u.ID {
		middleware.SetFlash(c, "You can't subscribe to yourself")
		c.Redirect(http.StatusFound, back)
		return
	}

	if _, err := d.Store.UserByID(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			zap.L().Error("Failed to look up channel", zap.Error(err), zap.String("requestID", requestID))
		}

		middleware.SetFlash(c, "Channel not found")
		c.Redirect(http.StatusFound, back)
		return
	}

	subscribed, err := d.Store.ToggleSubscription(ctx, u.ID, id)
	if err != nil {
		zap.L().Error("Failed to toggle subscription", zap.Error(err), zap.String("requestID", requestID))

		middleware.SetFlash(c, "Something went wrong")
		c.Redirect(http.StatusFound, back)
		return
	}

	if subscribed {
		middleware.SetFlash(c, "Subscribed")
	} else {
		middleware.SetFlash(c, "Unsubscribed")
	}

	c.Redirect(http.StatusFound, back)
}

// referrer returns the path of the Referer header when it points back at this
// host, and the feed otherwise
func referrer(c *gin.Context) string {
	ref, err := url.Parse(c.Request.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request.Host) {
		return "/"
	}

	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}

	return ref.Path
}

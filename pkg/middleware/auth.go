package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireLogin sends anonymous visitors to the entry page
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			SetFlash(c, "Please log in first")
			c.Redirect(http.StatusFound, "/enter")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin only lets accounts with the admin flag through
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin {
			SetFlash(c, "Admin permission required")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Next()
	}
}

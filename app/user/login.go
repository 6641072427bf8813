package user

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/model"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/pkg/middleware"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type adminLoginBody struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	u, ok := checkCredentials(c, d, strings.TrimSpace(data.Username), data.Password, false)
	if !ok {
		return
	}

	middleware.Login(c, u)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UserAdminLogin accepts the configured admin credentials, which log into the
// first admin account, or the credentials of any account holding the admin
// flag
func UserAdminLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data adminLoginBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	email := strings.TrimSpace(data.Email)

	if constantEq(email, d.Config.Admin.Username) && constantEq(data.Password, d.Config.Admin.Password) {
		u, err := d.Store.FirstAdmin(c.Request.Context())
		if err == nil {
			middleware.Login(c, u)
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"ok":        false,
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to look up admin account", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	u, ok := checkCredentials(c, d, email, data.Password, true)
	if !ok {
		return
	}

	middleware.Login(c, u)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// checkCredentials writes the error response itself and reports whether the
// caller may continue
func checkCredentials(c *gin.Context, d *internal.Deps, username, password string, admin bool) (*model.User, bool) {
	requestID := c.MustGet("requestID").(string)

	invalid := func() {
		msg := "Invalid username or password"
		if admin {
			msg = "Admin authentication failed"
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"ok":        false,
			"error":     msg,
			"requestID": requestID,
		})
	}

	if username == "" || password == "" {
		invalid()
		return nil, false
	}

	u, err := d.Store.UserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			invalid()
			return nil, false
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	ok, rehash, err := d.Argon.Verify(password, u.PasswordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	if !ok || (admin && !u.IsAdmin) {
		invalid()
		return nil, false
	}

	if rehash {
		upgradeHash(c, d, u, password)
	}

	return u, true
}

// upgradeHash stores a hash made with the current parameters. Failing here
// doesn't fail the login.
func upgradeHash(c *gin.Context, d *internal.Deps, u *model.User, password string) {
	requestID := c.MustGet("requestID").(string)

	hash, err := d.Argon.Hash(password)
	if err == nil {
		err = d.Store.UpdatePasswordHash(c.Request.Context(), u.ID, hash)
	}

	if err != nil {
		zap.L().Warn("Failed to upgrade password hash", zap.Error(err), zap.Uint("userID", u.ID), zap.String("requestID", requestID))
		return
	}

	u.PasswordHash = hash
	zap.L().Debug("Upgraded password hash", zap.Uint("userID", u.ID), zap.String("requestID", requestID))
}

func constantEq(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func UserLogout(c *gin.Context) {
	middleware.Logout(c)
	c.Redirect(http.StatusFound, "/enter")
}

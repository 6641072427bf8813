package user

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

type registerBody struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Display  string `form:"display"`
	Captcha  string `form:"captcha"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	data.Username = strings.TrimSpace(data.Username)

	if err := validators.Credentials(data.Username, data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if strings.TrimSpace(data.Captcha) != d.Config.Captcha.RegisterAnswer {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     "verification failed",
			"requestID": requestID,
		})
		return
	}

	display := strings.TrimSpace(data.Display)
	if display == "" {
		display = data.Username
	}

	if err := validators.Profile(display, ""); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":        false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	hash, err := d.Argon.Hash(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	u := &model.User{
		Username:     data.Username,
		PasswordHash: hash,
		DisplayName:  display,
	}

	if err := d.Store.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"ok":        false,
				"error":     "username taken",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	middleware.Login(c, u)

	zap.L().Debug("New user registered", zap.Uint("userID", u.ID), zap.String("requestID", requestID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

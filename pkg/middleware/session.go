package middleware

import (
	"bitwise74/emotube/internal/model"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/pkg/security"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionKey = "session"
	managerKey = "sessionManager"
	userKey    = "user"
)

// NewSessionMiddleware loads the session cookie into the context. A missing
// or broken cookie starts an empty session. The logged in user is looked up
// so handlers never act on an account that was deleted meanwhile.
func NewSessionMiddleware(m *security.SessionManager, s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(managerKey, m)

		sess := &security.Session{}

		if tokenStr, err := c.Cookie(security.SessionCookie); err == nil {
			if parsed, err := m.Parse(tokenStr); err == nil {
				sess = parsed
			}
		}

		if sess.UserID != 0 {
			u, err := s.UserByID(c.Request.Context(), sess.UserID)
			switch {
			case err == nil:
				c.Set(userKey, u)
				c.Set("userID", u.ID)
			case errors.Is(err, store.ErrNotFound):
				sess.UserID = 0
			default:
				zap.L().Error("Failed to load session user", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"ok":        false,
					"error":     "Internal server error",
					"requestID": c.GetString("requestID"),
				})
				return
			}
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// GetSession returns the request's session, never nil
func GetSession(c *gin.Context) *security.Session {
	if v, ok := c.Get(sessionKey); ok {
		return v.(*security.Session)
	}

	s := &security.Session{}
	c.Set(sessionKey, s)
	return s
}

// CurrentUser returns the logged in user or nil
func CurrentUser(c *gin.Context) *model.User {
	u, _ := c.Value(userKey).(*model.User)
	return u
}

// SaveSession signs the session and writes the cookie. Must run before the
// response body is written.
func SaveSession(c *gin.Context) {
	m, ok := c.Get(managerKey)
	if !ok {
		return
	}
	sm := m.(*security.SessionManager)

	token, err := sm.Sign(GetSession(c))
	if err != nil {
		zap.L().Error("Failed to sign session", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(security.SessionCookie, token, int(sm.MaxAge.Seconds()), "/", "", sm.Secure, true)
}

// Login binds the session to u. Logging in also counts as passing the entry
// challenge.
func Login(c *gin.Context, u *model.User) {
	s := GetSession(c)
	s.UserID = u.ID
	s.CaptchaOK = true
	c.Set(userKey, u)
	SaveSession(c)
}

// Logout replaces the session with an empty one
func Logout(c *gin.Context) {
	c.Set(sessionKey, &security.Session{})
	c.Set(userKey, (*model.User)(nil))
	SaveSession(c)
}

// SetFlash stores a message shown once on the next rendered page
func SetFlash(c *gin.Context, msg string) {
	GetSession(c).Flash = msg
	SaveSession(c)
}

// TakeFlash returns the pending message and clears it
func TakeFlash(c *gin.Context) string {
	s := GetSession(c)
	msg := s.Flash
	if msg != "" {
		s.Flash = ""
		SaveSession(c)
	}

	return msg
}

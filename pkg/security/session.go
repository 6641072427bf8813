package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const SessionCookie = "session"

var ErrSessionInvalid = errors.New("session invalid")

// Session is everything kept between requests. It travels as a signed JWT in
// a cookie so no server side session store is needed.
type Session struct {
	UserID uint `json:"user_id,omitempty"`
	// CaptchaOK is set once the visitor answered the entry challenge or
	// logged in
	CaptchaOK  bool   `json:"captcha_ok,omitempty"`
	CaptchaAns int    `json:"captcha_ans,omitempty"`
	Flash      string `json:"flash,omitempty"`
	jwt.RegisteredClaims
}

type SessionManager struct {
	Secret []byte
	MaxAge time.Duration
	Secure bool
}

func NewSessionManager(secret string, maxAge time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		Secret: []byte(secret),
		MaxAge: maxAge,
		Secure: secure,
	}
}

func (m *SessionManager) Sign(s *Session) (string, error) {
	now := time.Now()

	claims := *s
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.MaxAge))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(m.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session, %w", err)
	}

	return token, nil
}

func (m *SessionManager) Parse(tokenStr string) (*Session, error) {
	var s Session

	token, err := jwt.ParseWithClaims(tokenStr, &s, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return m.Secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrSessionInvalid, err)
	}

	if !token.Valid {
		return nil, ErrSessionInvalid
	}

	return &s, nil
}

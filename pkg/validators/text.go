package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrUsernameEmpty   = errors.New("username and password are required")
	ErrUsernameTooLong = errors.New("username is too long")
	ErrUsernameInvalid = errors.New("username contains invalid characters")
	ErrPasswordEmpty   = errors.New("username and password are required")
	ErrPasswordTooLong = errors.New("password is too long")
	ErrCommentEmpty    = errors.New("comment is empty")
	ErrCommentTooLong  = errors.New("comment is too long")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrProfileTooLong  = errors.New("display name or bio is too long")
)

const (
	maxUsernameLen    = 64
	maxPasswordLen    = 255
	maxCommentLen     = 2000
	maxTitleLen       = 200
	maxDisplayNameLen = 64
	maxBioLen         = 1000
)

// Credentials validates a username and password pair. The username is
// expected to be trimmed already.
func Credentials(username, password string) error {
	if username == "" {
		return ErrUsernameEmpty
	}

	if password == "" {
		return ErrPasswordEmpty
	}

	if utf8.RuneCountInString(username) > maxUsernameLen {
		return ErrUsernameTooLong
	}

	if strings.ContainsAny(username, " \t\r\n/") {
		return ErrUsernameInvalid
	}

	if len(password) > maxPasswordLen {
		return ErrPasswordTooLong
	}

	return nil
}

func CommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrCommentEmpty
	}

	if utf8.RuneCountInString(text) > maxCommentLen {
		return ErrCommentTooLong
	}

	return nil
}

func Title(title string) error {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return ErrTitleTooLong
	}

	return nil
}

func Profile(displayName, bio string) error {
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen || utf8.RuneCountInString(bio) > maxBioLen {
		return ErrProfileTooLong
	}

	return nil
}

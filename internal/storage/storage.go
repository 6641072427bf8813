// Package storage holds uploaded videos, generated thumbnails and avatars.
// Objects are addressed by keys built from random names so uploads never
// collide and client supplied file names are never trusted.
package storage

import (
	"bitwise74/emotube/config"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	thumbsPrefix  = "thumbs"
	avatarsPrefix = "avatars"
)

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete removes every key. Missing objects are not an error.
	Delete(ctx context.Context, keys ...string) error
	// URL returns the address browsers fetch the object from
	URL(key string) string
}

// New returns the backend selected by storage.type
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Type {
	case "s3":
		return NewS3(ctx, cfg)
	case "local":
		return NewLocal(cfg.Storage.Root)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// NewName returns a random name keeping the already validated extension
func NewName(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
}

func VideoKey(name string) string {
	return name
}

func ThumbKey(name string) string {
	return path.Join(thumbsPrefix, name)
}

func AvatarKey(name string) string {
	return path.Join(avatarsPrefix, name)
}

// DetectContentType sniffs the content type from the first bytes of r
func DetectContentType(r io.Reader) string {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "application/octet-stream"
	}

	return m.String()
}

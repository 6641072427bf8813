// Package app wires the dependencies together and registers the HTTP routes
package app

import (
	"bitwise74/emotube/config"
	"bitwise74/emotube/db"
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/service"
	"bitwise74/emotube/internal/storage"
	"bitwise74/emotube/internal/store"
	"bitwise74/emotube/pkg/security"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// NewDeps opens the database and media storage and builds the services
func NewDeps(ctx context.Context, cfg *config.Config) (*internal.Deps, error) {
	conn, err := db.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	media, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media storage, %w", err)
	}

	s := store.New(conn)
	thumbs := newThumbnailer(cfg)

	return &internal.Deps{
		Config:   cfg,
		DB:       conn,
		Store:    s,
		Argon:    security.New(),
		Sessions: security.NewSessionManager(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Host.SSLEnabled),
		Media:    media,
		Thumbs:   thumbs,
		Uploader: service.NewUploader(media, s, thumbs),
	}, nil
}

// newThumbnailer leaves out the tiers whose binaries can't be found so that
// uploads don't pay for a doomed attempt
func newThumbnailer(cfg *config.Config) *service.Thumbnailer {
	t := &service.Thumbnailer{Brand: cfg.App.Brand}
	ff := service.NewFFmpeg(cfg.FFmpeg)

	if _, err := exec.LookPath(ff.Path); err != nil {
		zap.L().Warn("ffmpeg not found, thumbnails will fall back to placeholders", zap.String("path", ff.Path))
		return t
	}
	t.FFmpeg = ff

	if !cfg.FFmpeg.Embedded {
		return t
	}

	if _, err := exec.LookPath(ff.FFprobePath); err != nil {
		zap.L().Warn("ffprobe not found, in-process frame decoding disabled", zap.String("path", ff.FFprobePath))
		return t
	}
	t.Decoder = &service.FFmpegDecoder{FFmpeg: ff}

	return t
}

package service

import (
	"bitwise74/emotube/internal/model"
	"bitwise74/emotube/internal/storage"
	"bitwise74/emotube/internal/store"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"

	"go.uber.org/zap"
)

const defaultTitle = "Untitled"

type Uploader struct {
	Media  storage.Store
	Store  *store.Store
	Thumbs *Thumbnailer
}

func NewUploader(media storage.Store, s *store.Store, t *Thumbnailer) *Uploader {
	return &Uploader{
		Media:  media,
		Store:  s,
		Thumbs: t,
	}
}

// Do stores an already validated video together with its thumbnail and
// records the row. ext must come from validation, never from the client. If
// any step fails the objects stored so far are removed again.
func (u *Uploader) Do(ctx context.Context, fh *multipart.FileHeader, ext, title, desc string, userID uint) (*model.Video, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file, %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "emotube-upload-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file, %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, src)
	if err != nil {
		return nil, fmt.Errorf("failed to write temporary file, %w", err)
	}

	// A blank title draws the brand on the placeholder, only the row gets the default
	thumb := u.Thumbs.Generate(ctx, tmp.Name(), title)

	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	contentType := storage.DetectContentType(tmp)

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	videoName := storage.NewName(ext)
	thumbName := storage.NewName("png")

	var stored []string
	cleanup := func() {
		if err := u.Media.Delete(context.Background(), stored...); err != nil {
			zap.L().Error("Failed to clean up after failed upload", zap.Strings("keys", stored), zap.Error(err))
		}
	}

	if err := u.Media.Put(ctx, storage.VideoKey(videoName), tmp, size, contentType); err != nil {
		return nil, err
	}
	stored = append(stored, storage.VideoKey(videoName))

	if err := u.Media.Put(ctx, storage.ThumbKey(thumbName), bytes.NewReader(thumb.Data), int64(len(thumb.Data)), "image/png"); err != nil {
		cleanup()
		return nil, err
	}
	stored = append(stored, storage.ThumbKey(thumbName))

	v := &model.Video{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(desc),
		Filename:    videoName,
		Thumb:       thumbName,
	}

	if err := u.Store.CreateVideo(ctx, v); err != nil {
		cleanup()
		return nil, err
	}

	zap.L().Debug("Video uploaded",
		zap.Uint("video_id", v.ID),
		zap.String("thumbnail_stage", string(thumb.Stage)),
		zap.Int64("size", size))

	return v, nil
}

// SaveAvatar stores an already validated image under a fresh name and returns
// that name
func (u *Uploader) SaveAvatar(ctx context.Context, f io.ReadSeeker, size int64, ext string) (string, error) {
	contentType := storage.DetectContentType(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	name := storage.NewName(ext)
	if err := u.Media.Put(ctx, storage.AvatarKey(name), f, size, contentType); err != nil {
		return "", err
	}

	return name, nil
}

// RemoveVideoMedia deletes the stored files of the given videos. Failures are
// logged only, the rows are already gone.
func (u *Uploader) RemoveVideoMedia(ctx context.Context, videos ...model.Video) {
	keys := make([]string, 0, len(videos)*2)
	for _, v := range videos {
		keys = append(keys, storage.VideoKey(v.Filename))
		if v.Thumb != "" {
			keys = append(keys, storage.ThumbKey(v.Thumb))
		}
	}

	if err := u.Media.Delete(ctx, keys...); err != nil {
		zap.L().Error("Failed to delete video media", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (u *Uploader) RemoveAvatar(ctx context.Context, name string) {
	if name == "" {
		return
	}

	if err := u.Media.Delete(ctx, storage.AvatarKey(name)); err != nil {
		zap.L().Error("Failed to delete avatar", zap.String("name", name), zap.Error(err))
	}
}

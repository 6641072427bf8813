// Package validators checks user input before it reaches storage
package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge         = errors.New("file too large")
	ErrFileNameTooLong      = errors.New("file name is too long")
	ErrVideoTypeUnsupported = errors.New("unsupported video type")
	ErrImageTypeUnsupported = errors.New("unsupported image type")
	ErrNoFile               = errors.New("no file provided")
)

const maxFileNameSize = 255

var (
	VideoExtensions = []string{"mp4", "webm", "ogg", "mov", "mkv"}
	ImageExtensions = []string{"png", "jpg", "jpeg", "gif"}
)

func extension(name string, allowed []string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "", false
	}

	return ext, slices.Contains(allowed, ext)
}

// VideoExtension returns the lower cased extension of name when it is an
// allowed video type
func VideoExtension(name string) (string, error) {
	ext, ok := extension(name, VideoExtensions)
	if !ok {
		return "", ErrVideoTypeUnsupported
	}

	return ext, nil
}

// ImageExtension returns the lower cased extension of name when it is an
// allowed image type
func ImageExtension(name string) (string, error) {
	ext, ok := extension(name, ImageExtensions)
	if !ok {
		return "", ErrImageTypeUnsupported
	}

	return ext, nil
}

// VideoFile checks an uploaded video's name and size. The contents are not
// inspected, broken files still get a placeholder thumbnail.
func VideoFile(fh *multipart.FileHeader, maxSize int64) (int, string, error) {
	if fh == nil || fh.Filename == "" {
		return http.StatusBadRequest, "", ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, "", ErrFileNameTooLong
	}

	ext, err := VideoExtension(fh.Filename)
	if err != nil {
		return http.StatusBadRequest, "", err
	}

	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, "", ErrFileTooLarge
	}

	return 0, ext, nil
}

// ImageFile checks an uploaded image by extension and by sniffing its
// contents. The returned file is rewound and must be closed by the caller.
func ImageFile(fh *multipart.FileHeader, maxSize int64) (int, string, multipart.File, error) {
	if fh == nil || fh.Filename == "" {
		return http.StatusBadRequest, "", nil, ErrNoFile
	}

	ext, err := ImageExtension(fh.Filename)
	if err != nil {
		return http.StatusBadRequest, "", nil, err
	}

	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, "", nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, "", nil, err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, "", nil, err
	}

	if !strings.HasPrefix(mime.String(), "image/") {
		f.Close()
		return http.StatusBadRequest, "", nil, ErrImageTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, "", nil, err
	}

	return 0, ext, f, nil
}

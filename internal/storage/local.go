package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PublicPrefix is the route local media is served from
const PublicPrefix = "/uploads"

type Local struct {
	Root string
}

func NewLocal(root string) (*Local, error) {
	for _, dir := range []string{root, filepath.Join(root, thumbsPrefix), filepath.Join(root, avatarsPrefix)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory, %w", err)
		}
	}

	return &Local{Root: root}, nil
}

func (l *Local) path(key string) (string, error) {
	p := filepath.Join(l.Root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Clean(l.Root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	return p, nil
}

// Put writes to a temporary file first so a failed copy never leaves a
// truncated object behind
func (l *Local) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create file, %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file, %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write file, %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(f.Name(), p); err != nil {
		return fmt.Errorf("failed to move file into place, %w", err)
	}

	return nil
}

func (l *Local) Delete(_ context.Context, keys ...string) error {
	var errs []error

	for _, k := range keys {
		if k == "" {
			continue
		}

		p, err := l.path(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (l *Local) URL(key string) string {
	return PublicPrefix + "/" + key
}

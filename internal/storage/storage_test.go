package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewName(t *testing.T) {
	a := NewName(".MP4")
	b := NewName("mp4")

	assert.True(t, strings.HasSuffix(a, ".mp4"))
	assert.NotEqual(t, a, b)
	assert.Len(t, strings.TrimSuffix(a, ".mp4"), 32)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "abc.mp4", VideoKey("abc.mp4"))
	assert.Equal(t, "thumbs/abc.png", ThumbKey("abc.png"))
	assert.Equal(t, "avatars/abc.png", AvatarKey("abc.png"))
}

func TestLocalPutDelete(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root)
	require.NoError(t, err)

	ctx := context.Background()
	key := ThumbKey("x.png")

	require.NoError(t, l.Put(ctx, key, bytes.NewReader([]byte("data")), 4, "image/png"))

	got, err := os.ReadFile(filepath.Join(root, "thumbs", "x.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
	assert.Equal(t, "/uploads/thumbs/x.png", l.URL(key))

	require.NoError(t, l.Delete(ctx, key, "missing.mp4", ""))

	_, err = os.Stat(filepath.Join(root, "thumbs", "x.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = l.Put(context.Background(), "../evil", bytes.NewReader(nil), 0, "")
	assert.Error(t, err)
}

func TestDetectContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", DetectContentType(bytes.NewReader(png)))
}

package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/media/")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "videos/abc/clip.mp4", "video/mp4", strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Equal(t, "/media/videos/abc/clip.mp4", url)

	data, err := os.ReadFile(filepath.Join(dir, "videos", "abc", "clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))

	require.NoError(t, s.Delete(context.Background(), "videos/abc/clip.mp4"))
	_, err = os.Stat(filepath.Join(dir, "videos", "abc", "clip.mp4"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is not an error.
	require.NoError(t, s.Delete(context.Background(), "videos/abc/clip.mp4"))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "videos/../../x", "/abs"} {
		_, err := s.Put(context.Background(), key, "video/mp4", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStoreHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/media")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Put(ctx, "videos/x.mp4", "video/mp4", strings.NewReader("frames"))
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, "videos", "x.mp4"))
	assert.True(t, os.IsNotExist(statErr))
}

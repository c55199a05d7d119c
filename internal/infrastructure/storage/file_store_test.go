package storage

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wheelflat/internal/infrastructure/imaging"
)

func TestFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "frames")
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	img := image.NewGray(image.Rect(0, 0, 12, 9))

	path, err := s.SaveFrame(ctx, "wheel_00_axle1.jpg", img)
	require.NoError(t, err)
	require.Equal(t, s.Path("wheel_00_axle1.jpg"), path)

	loaded, err := imaging.NewFileLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), loaded.Bounds())

	path, err = s.SaveArtifact(ctx, "heatmap_x.png", img)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestFileStore_Rejects(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	img := image.NewGray(image.Rect(0, 0, 2, 2))

	_, err = s.SaveArtifact(context.Background(), "../escape.jpg", img)
	require.Error(t, err)

	_, err = s.SaveArtifact(context.Background(), "x.gif", img)
	require.Error(t, err)
	_, statErr := os.Stat(s.Path("x.gif"))
	require.True(t, os.IsNotExist(statErr))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.SaveFrame(ctx, "a.jpg", img)
	require.ErrorIs(t, err, context.Canceled)
}

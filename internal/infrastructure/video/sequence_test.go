package video

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wheelflat/internal/infrastructure/imaging"
)

func solid(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return img
}

func TestSequenceSource_ReadsInOrderThenEOF(t *testing.T) {
	ctx := context.Background()
	src := NewSequence([]image.Image{solid(8, 8, 10), solid(8, 8, 200)})

	f, err := src.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, f.Index)
	require.Equal(t, uint8(10), f.Gray.Pix[0])

	f, err = src.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, f.Index)
	require.Equal(t, uint8(200), f.Gray.Pix[0])

	_, err = src.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestSequenceSource_CloseActsAsEOF(t *testing.T) {
	src := NewSequence([]image.Image{solid(8, 8, 1), solid(8, 8, 2)})
	require.NoError(t, src.Close())

	_, err := src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestSequenceSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSequence([]image.Image{solid(8, 8, 1)}).Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDirOpener(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"b.png", "a.png", "notes.txt"} {
		path := filepath.Join(dir, name)
		if filepath.Ext(name) != ".png" {
			require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
			continue
		}
		f, err := os.Create(path)
		require.NoError(t, err)
		g := image.NewGray(image.Rect(0, 0, 4, 4))
		g.SetGray(0, 0, color.Gray{Y: uint8(100 + i)})
		require.NoError(t, png.Encode(f, g))
		require.NoError(t, f.Close())
	}

	require.True(t, IsDir(dir))
	require.False(t, IsDir(filepath.Join(dir, "a.png")))

	src, err := NewDirOpener(imaging.NewFileLoader()).Open(context.Background(), dir)
	require.NoError(t, err)
	defer src.Close()

	f, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint8(101), f.Gray.Pix[0]) // сначала a.png

	f, err = src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint8(100), f.Gray.Pix[0])

	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestDirOpener_MissingDirectory(t *testing.T) {
	_, err := NewDirOpener(imaging.NewFileLoader()).Open(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

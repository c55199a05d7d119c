//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/require"

	"wheelflat/internal/domain/entity"
)

func canvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	return img
}

func TestContours_BlankImage(t *testing.T) {
	contours, err := NewGoCVProcessor().Contours(context.Background(), canvas(320, 240))
	require.NoError(t, err)
	require.Empty(t, contours)

	_, ok := entity.UnionRegion(contours, 20, 320, 240)
	require.False(t, ok)
}

func TestContours_FilledRectangle(t *testing.T) {
	img := canvas(400, 300)
	rect := image.Rect(100, 80, 220, 180)
	draw.Draw(img, rect, &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	contours, err := NewGoCVProcessor().Contours(context.Background(), img)
	require.NoError(t, err)
	require.NotEmpty(t, contours)

	region, ok := entity.UnionRegion(contours, 20, 400, 300)
	require.True(t, ok)
	require.InDelta(t, rect.Min.X, region.XMin, 2)
	require.InDelta(t, rect.Min.Y, region.YMin, 2)
	require.InDelta(t, rect.Max.X, region.XMax, 2)
	require.InDelta(t, rect.Max.Y, region.YMax, 2)

	want := float64(rect.Dx()*rect.Dy()) * 100 * 100 / (400 * 300)
	require.InEpsilon(t, want, entity.FlatArea(region, 400, 300, 100), 0.05)
}

func TestHeatmapAndAnnotate_KeepSize(t *testing.T) {
	img := canvas(64, 48)
	p := NewGoCVProcessor()

	heat, err := p.Heatmap(img)
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), heat.Bounds())

	boxed, err := p.Annotate(img, entity.DefectRegion{XMin: 5, YMin: 5, XMax: 30, YMax: 20})
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), boxed.Bounds())
	_, g, _, _ := boxed.At(5, 10).RGBA()
	require.NotZero(t, g)
}

func TestToMat_Empty(t *testing.T) {
	_, err := NewGoCVProcessor().Contours(context.Background(), image.NewRGBA(image.Rectangle{}))
	require.Error(t, err)
}

package app

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/infrastructure/imaging"
	"wheelflat/internal/infrastructure/storage"
)

func newExtractor(opener *sequenceOpener, store *memoryFrameStore, threshold float64) *FrameExtractor {
	return NewFrameExtractor(opener, imaging.NewSSIM(), store, discardLogger(), ExtractorConfig{Threshold: threshold})
}

func TestFrameExtractor_AlternatingWheels(t *testing.T) {
	a := checkerboard(64, 48, 8, false)
	b := checkerboard(64, 48, 8, true)
	opener := &sequenceOpener{frames: []image.Image{a, a, b, b, a}}
	store := &memoryFrameStore{}

	result, err := newExtractor(opener, store, 0.5).Extract(context.Background(), "train.mp4")
	require.NoError(t, err)
	require.Equal(t, 5, result.FramesRead)
	require.Equal(t, 3, result.Count())

	wheels := make([]int, 0, 3)
	axles := make([]int, 0, 3)
	sources := make([]int, 0, 3)
	for _, f := range result.Frames {
		wheels = append(wheels, f.WheelIndex)
		axles = append(axles, f.AxleIndex)
		sources = append(sources, f.SourceIndex)
	}
	assert.Equal(t, []int{0, 1, 2}, wheels)
	assert.Equal(t, []int{1, 1, 2}, axles)
	assert.Equal(t, []int{0, 2, 4}, sources)
	assert.Equal(t, []string{"wheel_00_axle1.jpg", "wheel_01_axle1.jpg", "wheel_02_axle2.jpg"}, store.saved)
	assert.Equal(t, "mem/wheel_01_axle1.jpg", result.Frames[1].Path)
}

func TestFrameExtractor_IdenticalFramesKeepOne(t *testing.T) {
	a := checkerboard(32, 32, 4, false)
	for _, threshold := range []float64{0, 0.5, 0.95} {
		opener := &sequenceOpener{frames: []image.Image{a, a, a, a}}
		result, err := newExtractor(opener, &memoryFrameStore{}, threshold).Extract(context.Background(), "v")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count(), "threshold %v", threshold)
		assert.Equal(t, 4, result.FramesRead)
	}
}

func TestFrameExtractor_DistinctFramesKeepAll(t *testing.T) {
	frames := []image.Image{
		checkerboard(32, 32, 4, false),
		checkerboard(32, 32, 4, true),
		checkerboard(32, 32, 4, false),
		checkerboard(32, 32, 4, true),
	}
	result, err := newExtractor(&sequenceOpener{frames: frames}, &memoryFrameStore{}, 0.75).Extract(context.Background(), "v")
	require.NoError(t, err)
	require.Equal(t, 4, result.Count())
	assert.Equal(t, 2, result.Frames[3].AxleIndex)
}

func TestFrameExtractor_EmptyStream(t *testing.T) {
	result, err := newExtractor(&sequenceOpener{}, &memoryFrameStore{}, 0.75).Extract(context.Background(), "v")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count())
	assert.Equal(t, 0, result.FramesRead)
}

func TestFrameExtractor_OpenFailure(t *testing.T) {
	opener := &sequenceOpener{err: errors.New("no such file")}
	result, err := newExtractor(opener, &memoryFrameStore{}, 0.75).Extract(context.Background(), "missing.mp4")
	require.ErrorIs(t, err, ErrStreamOpen)
	assert.Equal(t, 0, result.Count())
}

func TestFrameExtractor_InvalidThreshold(t *testing.T) {
	a := checkerboard(32, 32, 4, false)
	for _, threshold := range []float64{-0.1, 1.5, math.NaN()} {
		store := &memoryFrameStore{}
		opener := &sequenceOpener{frames: []image.Image{a, a, a, a}}
		result, err := newExtractor(opener, store, threshold).Extract(context.Background(), "v")
		require.ErrorIs(t, err, ErrInvalidThreshold, "threshold %v", threshold)
		assert.Equal(t, 0, result.Count())
		assert.Empty(t, store.saved)
	}
}

func TestFrameExtractor_StoreFailureAborts(t *testing.T) {
	a := checkerboard(32, 32, 4, false)
	store := &memoryFrameStore{err: errors.New("disk full")}
	result, err := newExtractor(&sequenceOpener{frames: []image.Image{a}}, store, 0.75).Extract(context.Background(), "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, result.Count())
}

func TestFrameExtractor_SizeChange(t *testing.T) {
	frames := []image.Image{checkerboard(32, 32, 4, false), checkerboard(40, 32, 4, false)}
	_, err := newExtractor(&sequenceOpener{frames: frames}, &memoryFrameStore{}, 0.75).Extract(context.Background(), "v")
	require.ErrorIs(t, err, ErrImageSize)
}

func TestFrameExtractor_CancelledContext(t *testing.T) {
	a := checkerboard(32, 32, 4, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newExtractor(&sequenceOpener{frames: []image.Image{a, a}}, &memoryFrameStore{}, 0.75).Extract(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count())
}

func TestFrameExtractor_SourceClosedMidStream(t *testing.T) {
	a := checkerboard(32, 32, 4, false)
	b := checkerboard(32, 32, 4, true)
	opener := &sequenceOpener{frames: []image.Image{a, b, a, b}}
	store := &memoryFrameStore{}
	store.onSave = func() { opener.source.Close() }

	result, err := newExtractor(opener, store, 0.75).Extract(context.Background(), "v")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count())
}

func TestFrameExtractor_WritesFramesToDisk(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	a := checkerboard(32, 32, 4, false)
	b := checkerboard(32, 32, 4, true)
	extractor := NewFrameExtractor(&sequenceOpener{frames: []image.Image{a, b}}, imaging.NewSSIM(), fs, discardLogger(), ExtractorConfig{Threshold: DefaultThreshold})

	result, err := extractor.Extract(context.Background(), "v")
	require.NoError(t, err)
	require.Equal(t, 2, result.Count())

	img, err := imaging.NewFileLoader().Load(result.Frames[1].Path)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, entity.FrameName(1, 1), result.Frames[1].Name())
}

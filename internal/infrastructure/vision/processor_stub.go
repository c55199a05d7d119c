//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"
	"image/color"

	"wheelflat/internal/domain/entity"
)

var errNotEnabled = errors.New("gocv build tag is not enabled")

// GoCVProcessor заглушка процессора для сборки без OpenCV.
type GoCVProcessor struct {
	BlurKernel int
	CannyLow   float32
	CannyHigh  float32
	BoxColor   color.RGBA
	BoxWidth   int
}

// NewGoCVProcessor создаёт процессор-заглушку (без OpenCV).
func NewGoCVProcessor() *GoCVProcessor {
	return &GoCVProcessor{
		BlurKernel: 5,
		CannyLow:   100,
		CannyHigh:  200,
		BoxColor:   color.RGBA{G: 255, A: 255},
		BoxWidth:   2,
	}
}

// Contours возвращает ошибку, если сборка без тега gocv.
func (p *GoCVProcessor) Contours(ctx context.Context, img image.Image) ([]entity.Contour, error) {
	_ = ctx
	_ = img
	return nil, errNotEnabled
}

// Annotate возвращает ошибку, если сборка без тега gocv.
func (p *GoCVProcessor) Annotate(img image.Image, region entity.DefectRegion) (image.Image, error) {
	_ = img
	_ = region
	return nil, errNotEnabled
}

// Heatmap возвращает ошибку, если сборка без тега gocv.
func (p *GoCVProcessor) Heatmap(img image.Image) (image.Image, error) {
	_ = img
	return nil, errNotEnabled
}

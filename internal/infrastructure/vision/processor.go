//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"wheelflat/internal/domain/entity"
)

// GoCVProcessor ищет контуры и рисует артефакты отчёта средствами OpenCV.
type GoCVProcessor struct {
	BlurKernel int     // сторона ядра Гаусса, нечётная
	CannyLow   float32 // нижний порог гистерезиса
	CannyHigh  float32 // верхний порог гистерезиса
	BoxColor   color.RGBA
	BoxWidth   int
}

// NewGoCVProcessor создаёт процессор с размытием 5x5 и Canny 100/200.
func NewGoCVProcessor() *GoCVProcessor {
	return &GoCVProcessor{
		BlurKernel: 5,
		CannyLow:   100,
		CannyHigh:  200,
		BoxColor:   color.RGBA{G: 255, A: 255},
		BoxWidth:   2,
	}
}

// Contours реализует port.ContourExtractor.
func (p *GoCVProcessor) Contours(ctx context.Context, img image.Image) ([]entity.Contour, error) {
	_ = ctx
	mat, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	// Подавляем шум матрицы перед поиском границ.
	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(p.BlurKernel, p.BlurKernel), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, p.CannyLow, p.CannyHigh)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([]entity.Contour, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		out = append(out, entity.Contour{
			Bounds: gocv.BoundingRect(c),
			Area:   gocv.ContourArea(c),
		})
	}
	return out, nil
}

// Annotate реализует port.ArtifactRenderer.
func (p *GoCVProcessor) Annotate(img image.Image, region entity.DefectRegion) (image.Image, error) {
	mat, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gocv.Rectangle(&mat, region.Rect(), p.BoxColor, p.BoxWidth)
	return mat.ToImage()
}

// Heatmap реализует port.ArtifactRenderer через цветовую карту jet.
func (p *GoCVProcessor) Heatmap(img image.Image) (image.Image, error) {
	mat, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	heat := gocv.NewMat()
	defer heat.Close()
	gocv.ApplyColorMap(gray, &heat, gocv.ColormapJet)

	return heat.ToImage()
}

// toMat превращает image.Image в BGR gocv.Mat.
func toMat(img image.Image) (gocv.Mat, error) {
	if img == nil || img.Bounds().Empty() {
		return gocv.NewMat(), errors.New("empty image")
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("convert image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), errors.New("empty image")
	}
	return mat, nil
}

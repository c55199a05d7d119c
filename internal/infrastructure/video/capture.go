//go:build gocv
// +build gocv

package video

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"gocv.io/x/gocv"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
)

// CaptureOpener открывает видеофайлы через OpenCV.
type CaptureOpener struct{}

// NewCaptureOpener создаёт открывалку на OpenCV.
func NewCaptureOpener() *CaptureOpener {
	return &CaptureOpener{}
}

// Open реализует port.VideoOpener.
func (o *CaptureOpener) Open(ctx context.Context, path string) (port.FrameSource, error) {
	_ = ctx
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open video %s: capture is not opened", path)
	}
	return &captureSource{vc: vc, mat: gocv.NewMat()}, nil
}

// captureSource читает кадры из gocv.VideoCapture.
type captureSource struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	index  int
	closed bool
}

// Next реализует port.FrameSource.
func (s *captureSource) Next(ctx context.Context) (entity.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return entity.Frame{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return entity.Frame{}, err
	}

	if ok := s.vc.Read(&s.mat); !ok || s.mat.Empty() {
		return entity.Frame{}, io.EOF
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return entity.Frame{}, fmt.Errorf("convert frame %d: %w", s.index, err)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(s.mat, &gray, gocv.ColorBGRToGray)

	grayImg, err := gray.ToImage()
	if err != nil {
		return entity.Frame{}, fmt.Errorf("convert gray frame %d: %w", s.index, err)
	}
	g, ok := grayImg.(*image.Gray)
	if !ok {
		return entity.Frame{}, fmt.Errorf("convert gray frame %d: unexpected %T", s.index, grayImg)
	}

	frame := entity.Frame{Index: s.index, Image: img, Gray: g}
	s.index++
	return frame, nil
}

// Close реализует port.FrameSource.
func (s *captureSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.mat.Close()
	return s.vc.Close()
}

//go:build !gocv
// +build !gocv

package video

import (
	"context"

	"wheelflat/internal/domain/port"
)

// CaptureOpener заглушка на случай сборки без OpenCV.
type CaptureOpener struct{}

// NewCaptureOpener создаёт заглушку, которая всегда возвращает ошибку (без OpenCV).
func NewCaptureOpener() *CaptureOpener {
	return &CaptureOpener{}
}

// Open возвращает ErrNotEnabled, если сборка без тега gocv.
func (o *CaptureOpener) Open(ctx context.Context, path string) (port.FrameSource, error) {
	_ = ctx
	_ = path
	return nil, ErrNotEnabled
}

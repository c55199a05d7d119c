package video

import (
	"context"

	"wheelflat/internal/domain/port"
)

// Opener читает каталоги кадров через DirOpener, а всё остальное
// через захват OpenCV.
type Opener struct {
	dirs    port.VideoOpener
	capture port.VideoOpener
}

// NewOpener создаёт открывалку, которая читает каталоги через loader.
func NewOpener(loader port.ImageLoader) *Opener {
	return &Opener{
		dirs:    NewDirOpener(loader),
		capture: NewCaptureOpener(),
	}
}

// Open реализует port.VideoOpener.
func (o *Opener) Open(ctx context.Context, path string) (port.FrameSource, error) {
	if IsDir(path) {
		return o.dirs.Open(ctx, path)
	}
	return o.capture.Open(ctx, path)
}

var _ port.VideoOpener = (*Opener)(nil)

package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/imaging"
)

// SequenceSource отдаёт кадры из последовательности картинок в памяти или на диске.
type SequenceSource struct {
	next   func(i int) (image.Image, bool, error)
	index  int
	closed atomic.Bool
}

// NewSequence создаёт источник над готовым срезом картинок.
func NewSequence(frames []image.Image) *SequenceSource {
	return &SequenceSource{
		next: func(i int) (image.Image, bool, error) {
			if i >= len(frames) {
				return nil, false, nil
			}
			return frames[i], true, nil
		},
	}
}

// Next реализует port.FrameSource.
func (s *SequenceSource) Next(ctx context.Context) (entity.Frame, error) {
	if s.closed.Load() {
		return entity.Frame{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return entity.Frame{}, err
	}

	img, ok, err := s.next(s.index)
	if err != nil {
		return entity.Frame{}, err
	}
	if !ok {
		return entity.Frame{}, io.EOF
	}

	frame := entity.Frame{
		Index: s.index,
		Image: img,
		Gray:  imaging.Grayscale(img),
	}
	s.index++
	return frame, nil
}

// Close реализует port.FrameSource.
func (s *SequenceSource) Close() error {
	s.closed.Store(true)
	return nil
}

// DirOpener считает каталог картинок видео: один кадр на файл,
// в порядке имён.
type DirOpener struct {
	loader port.ImageLoader
}

// NewDirOpener создаёт открывалку, декодирующую кадры через loader.
func NewDirOpener(loader port.ImageLoader) *DirOpener {
	return &DirOpener{loader: loader}
}

// Open реализует port.VideoOpener.
func (o *DirOpener) Open(ctx context.Context, path string) (port.FrameSource, error) {
	_ = ctx
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && imaging.IsImageFile(e.Name()) {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}

	return &SequenceSource{
		next: func(i int) (image.Image, bool, error) {
			if i >= len(files) {
				return nil, false, nil
			}
			img, err := o.loader.Load(files[i])
			if err != nil {
				return nil, false, err
			}
			return img, true, nil
		},
	}, nil
}

// IsDir сообщает, является ли path каталогом.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ErrNotEnabled возвращает открывалка на OpenCV, если бинарник собран
// без тега gocv.
var ErrNotEnabled = errors.New("gocv build tag is not enabled")

var _ port.FrameSource = (*SequenceSource)(nil)
var _ port.VideoOpener = (*DirOpener)(nil)

package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/video"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func checkerboard(w, h, cell int, inverted bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			on := (x/cell+y/cell)%2 == 0
			if inverted {
				on = !on
			}
			if on {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// sequenceOpener hands out an in-memory sequence regardless of the path.
type sequenceOpener struct {
	frames []image.Image
	err    error
	source *video.SequenceSource
}

func (o *sequenceOpener) Open(ctx context.Context, path string) (port.FrameSource, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.source = video.NewSequence(o.frames)
	return o.source, nil
}

type memoryFrameStore struct {
	mu     sync.Mutex
	saved  []string
	err    error
	onSave func()
}

func (s *memoryFrameStore) SaveFrame(ctx context.Context, name string, img image.Image) (string, error) {
	return s.save(name)
}

func (s *memoryFrameStore) SaveArtifact(ctx context.Context, name string, img image.Image) (string, error) {
	return s.save(name)
}

func (s *memoryFrameStore) save(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, name)
	if s.onSave != nil {
		s.onSave()
	}
	return "mem/" + name, nil
}

// widthContours returns the configured contours for images of a given width.
type widthContours struct {
	byWidth map[int][]entity.Contour
	err     error
}

func (c *widthContours) Contours(ctx context.Context, img image.Image) ([]entity.Contour, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.byWidth[img.Bounds().Dx()], nil
}

type recordingRenderer struct {
	annotated []entity.DefectRegion
	heatmaps  int
}

func (r *recordingRenderer) Annotate(img image.Image, region entity.DefectRegion) (image.Image, error) {
	r.annotated = append(r.annotated, region)
	return img, nil
}

func (r *recordingRenderer) Heatmap(img image.Image) (image.Image, error) {
	r.heatmaps++
	return img, nil
}

type recordingNotifier struct {
	sent []entity.SeverityReport
	err  error
}

func (n *recordingNotifier) NotifyReport(ctx context.Context, report entity.SeverityReport) error {
	n.sent = append(n.sent, report)
	return n.err
}

type labelClassifier struct {
	labels map[string]entity.Label
}

func (c *labelClassifier) Classify(ctx context.Context, name string, img image.Image) (entity.Label, error) {
	label, ok := c.labels[name]
	if !ok {
		return "", errors.New("classifier has no verdict")
	}
	return label, nil
}

func contour(x0, y0, x1, y1 int) entity.Contour {
	return entity.Contour{
		Bounds: image.Rect(x0, y0, x1, y1),
		Area:   float64((x1 - x0) * (y1 - y0)),
	}
}

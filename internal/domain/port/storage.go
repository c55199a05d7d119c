package port

import (
	"context"
	"image"
)

// FrameStore сохраняет отобранные кадры видео.
type FrameStore interface {
	// SaveFrame пишет img под именем name и возвращает его расположение.
	SaveFrame(ctx context.Context, name string, img image.Image) (string, error)
}

// ArtifactStore сохраняет артефакты анализа.
type ArtifactStore interface {
	// SaveArtifact пишет img под именем name и возвращает его расположение.
	SaveArtifact(ctx context.Context, name string, img image.Image) (string, error)
}

// ImageLoader декодирует файлы изображений.
type ImageLoader interface {
	Load(path string) (image.Image, error)
}

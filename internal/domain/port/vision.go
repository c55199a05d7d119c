package port

import (
	"context"
	"image"

	"wheelflat/internal/domain/entity"
)

// ContourExtractor ищет контуры границ на изображении.
type ContourExtractor interface {
	// Contours размывает полутоновое изображение, ищет границы и возвращает
	// внешние контуры карты границ.
	Contours(ctx context.Context, img image.Image) ([]entity.Contour, error)
}

// ArtifactRenderer рисует картинки, прикладываемые к отчёту.
type ArtifactRenderer interface {
	// Annotate возвращает копию img с обведённой областью.
	Annotate(img image.Image, region entity.DefectRegion) (image.Image, error)

	// Heatmap возвращает псевдоцветную карту яркости img.
	Heatmap(img image.Image) (image.Image, error)
}

// Classifier помечает кадр как flat или non_flat.
type Classifier interface {
	Classify(ctx context.Context, name string, img image.Image) (entity.Label, error)
}

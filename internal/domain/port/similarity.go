package port

import "image"

// SimilarityScorer сравнивает два полутоновых изображения одного размера.
type SimilarityScorer interface {
	// Score возвращает значение из [-1, 1]; 1 означает структурно одинаковые.
	Score(a, b *image.Gray) (float64, error)
}

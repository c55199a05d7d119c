package port

import (
	"context"

	"wheelflat/internal/domain/entity"
)

// VideoOpener открывает видеопоток для последовательного чтения.
type VideoOpener interface {
	// Open возвращает источник, стоящий перед первым кадром.
	Open(ctx context.Context, path string) (FrameSource, error)
}

// FrameSource конечная последовательность кадров без перезапуска.
type FrameSource interface {
	// Next возвращает следующий кадр или io.EOF, когда поток кончился или закрыт.
	Next(ctx context.Context) (entity.Frame, error)

	// Close освобождает поток. Можно вызывать параллельно с Next.
	Close() error
}

package storage

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/imaging"
)

// FileStore пишет изображения в один каталог локальной файловой системы.
type FileStore struct {
	dir string
}

// NewFileStore создаёт хранилище в каталоге dir, создавая его при необходимости.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir возвращает корневой каталог.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path возвращает путь, по которому хранится изображение name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// SaveFrame реализует port.FrameStore.
func (s *FileStore) SaveFrame(ctx context.Context, name string, img image.Image) (string, error) {
	return s.save(ctx, name, img)
}

// SaveArtifact реализует port.ArtifactStore.
func (s *FileStore) SaveArtifact(ctx context.Context, name string, img image.Image) (string, error) {
	return s.save(ctx, name, img)
}

func (s *FileStore) save(ctx context.Context, name string, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid image name %q", name)
	}

	path := s.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if err := imaging.Encode(f, name, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

var _ port.FrameStore = (*FileStore)(nil)
var _ port.ArtifactStore = (*FileStore)(nil)

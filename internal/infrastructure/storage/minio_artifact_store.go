package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/imaging"
)

// MinIOConfig описывает бакет, в который выгружаются артефакты.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// MinIOStore выгружает артефакты отчётов в S3-совместимый бакет.
type MinIOStore struct {
	client *miniogo.Client
	bucket string
	prefix string
}

// NewMinIOStore создаёт клиента по cfg.
func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// EnsureBucket создаёт бакет, если его ещё нет.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// ObjectKey возвращает ключ, под которым хранится артефакт name.
func (s *MinIOStore) ObjectKey(name string) string {
	return path.Join(s.prefix, name)
}

// SaveArtifact реализует port.ArtifactStore.
func (s *MinIOStore) SaveArtifact(ctx context.Context, name string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, name, img); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	key := s.ObjectKey(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, &buf, int64(buf.Len()), miniogo.PutObjectOptions{
		ContentType: imaging.ContentType(name),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

var _ port.ArtifactStore = (*MinIOStore)(nil)

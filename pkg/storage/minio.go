package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/config"
)

// MinioStorage stores objects in an S3-compatible bucket.
type MinioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStorage connects to the bucket, creating it when missing.
func NewMinioStorage(ctx context.Context, cfg config.MinioConfig, publicBaseURL string) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}
	}
	if publicBaseURL == "" {
		publicBaseURL = client.EndpointURL().String() + "/" + cfg.BucketName
	}
	return &MinioStorage{client: client, bucket: cfg.BucketName, baseURL: publicBaseURL}, nil
}

// Put uploads obj, replacing an existing object with the same key.
func (s *MinioStorage) Put(ctx context.Context, obj Object) (string, error) {
	key, err := CleanKey(obj.Key)
	if err != nil {
		return "", err
	}
	size := obj.Size
	if size <= 0 {
		size = -1
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, obj.Body, size, minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		CacheControl: "public, max-age=3600",
	}); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// Delete removes key from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	cleaned, err := CleanKey(key)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, cleaned, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", cleaned, err)
	}
	return nil
}

// PublicURL returns the public address of key.
func (s *MinioStorage) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

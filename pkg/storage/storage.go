package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/config"
)

// Object describes an upload.
type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// ObjectStore persists uploaded files and resolves their public URLs.
// Put overwrites any existing object with the same key.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "minio", "s3":
		return NewMinioStorage(ctx, cfg.Minio, cfg.PublicBaseURL)
	case "", "local":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// CleanKey normalises an object key and rejects traversal outside the root.
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("empty object key")
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

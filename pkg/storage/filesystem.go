package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage persists files on disk under a base directory. It backs
// development setups where the API itself serves the upload directory.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, baseURL: baseURL}, nil
}

// Put writes the object body to disk, replacing any previous file.
func (s *LocalStorage) Put(ctx context.Context, obj Object) (string, error) {
	key, err := CleanKey(obj.Key)
	if err != nil {
		return "", err
	}
	dest := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := io.Copy(tmp, obj.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("move upload file: %w", err)
	}
	return s.PublicURL(key), nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	cleaned, err := CleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(s.resolve(cleaned)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// PublicURL returns the address under which the API serves key.
func (s *LocalStorage) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

// Dir exposes the root directory so the HTTP layer can serve it.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

func (s *LocalStorage) resolve(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

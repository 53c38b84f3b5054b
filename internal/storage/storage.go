package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when the named object does not exist
var ErrNotFound = errors.New("stored file not found")

// Storage persists profile images. Implementations own replacement and
// removal of superseded files; callers only ever refer to objects by the
// name returned at save time.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}

// DiskStorage stores files under a base directory on the local filesystem
type DiskStorage struct {
	baseDir string
}

// NewDiskStorage creates the base directory if needed
func NewDiskStorage(baseDir string) (*DiskStorage, error) {
	if err := os.MkdirAll(baseDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", baseDir, err)
	}
	return &DiskStorage{baseDir: baseDir}, nil
}

func (s *DiskStorage) path(name string) string {
	// Object names are server-generated, but never trust them as paths
	return filepath.Join(s.baseDir, filepath.Base(name))
}

func (s *DiskStorage) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	dst, err := os.Create(s.path(name))
	if err != nil {
		return fmt.Errorf("failed to create file on server: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(s.path(name))
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func (s *DiskStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}

func (s *DiskStorage) Remove(_ context.Context, name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stored file: %w", err)
	}
	return nil
}

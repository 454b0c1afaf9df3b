package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DiskStore persists uploaded file bytes on local disk. Stored names are
// random UUIDs so uploads can never collide or escape the base directory.
type DiskStore struct {
	baseDir string
}

// NewDiskStore creates the base directory if needed
func NewDiskStore(baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

// Save writes the uploaded bytes to disk and returns the stored path. Only
// the extension of the original name is kept.
func (s *DiskStore) Save(src io.Reader, originalName string) (string, error) {
	ext := filepath.Ext(filepath.Base(originalName))
	path := filepath.Join(s.baseDir, uuid.New().String()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}

// Remove deletes a stored file
func (s *DiskStore) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

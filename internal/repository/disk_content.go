package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mansoorceksport/filevault/internal/domain"
)

// DiskContentStore implements domain.ContentStore on a local directory.
// Writes go to a temp file first and are renamed into place, so concurrent
// readers never see partial content and regeneration overwrites atomically.
type DiskContentStore struct {
	root string
}

// NewDiskContentStore creates the root directory if needed.
func NewDiskContentStore(root string) (*DiskContentStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &DiskContentStore{root: root}, nil
}

// NewPath returns a fresh unique content path under the store root.
func (s *DiskContentStore) NewPath() string {
	return filepath.Join(s.root, uuid.NewString())
}

func (s *DiskContentStore) Write(ctx context.Context, path string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, ".write-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move content into place: %w", err)
	}
	return nil
}

func (s *DiskContentStore) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return data, nil
}

func (s *DiskContentStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat content: %w", err)
}

package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes exported files below a root directory.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at root. Nothing is created yet.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: filepath.Clean(root)}
}

// Root returns the cleaned root directory.
func (s *FileStore) Root() string { return s.root }

// EnsureRoot creates the root directory if needed.
func (s *FileStore) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.root, err)
	}
	return nil
}

// EnsureDir creates the directory for a folder path and returns it.
func (s *FileStore) EnsureDir(folders []string) (string, error) {
	dir := DirPath(s.root, folders)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

// Write stores data as name inside the folder path, creating directories as
// needed, and returns the full path written.
func (s *FileStore) Write(folders []string, name string, data []byte) (string, error) {
	dir, err := s.EnsureDir(folders)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)

	// Use atomic write: write to temp file, then rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up on error
		return "", fmt.Errorf("failed to rename file %s: %w", path, err)
	}

	return path, nil
}

// Package filestore provides the synchronous file primitives the plan
// repository is built on.
//
// Store is an interface so the repository can be exercised against an
// in-memory or failure-injecting implementation in tests (DIP). OSStore is
// the production implementation backed by the local filesystem.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrNotFound is returned (wrapped) by ReadFile and DeleteFile when the
// target does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the file operations consumed by the plan repository.
type Store interface {
	ReadFile(path string) (string, error)
	// WriteFile creates parent directories as needed.
	WriteFile(path, content string) error
	FileExists(path string) bool
	DirectoryExists(path string) bool
	CreateDirectory(path string) error
	// ListFiles returns absolute paths of the regular files directly inside dir.
	ListFiles(dir string) ([]string, error)
	DeleteFile(path string) error
}

// OSStore implements Store using the local filesystem.
type OSStore struct{}

// NewOSStore creates a filesystem-backed store.
func NewOSStore() *OSStore {
	return &OSStore{}
}

// ReadFile reads the whole file as UTF-8 text.
func (s *OSStore) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("reading %s: %w", path, ErrNotFound)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile writes content to path, creating parent directories as needed.
func (s *OSStore) WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether path exists and is not a directory.
func (s *OSStore) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DirectoryExists reports whether path exists and is a directory.
func (s *OSStore) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CreateDirectory creates path and any missing parents.
func (s *OSStore) CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

// ListFiles returns the regular files in dir, sorted by name.
func (s *OSStore) ListFiles(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("listing %s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(abs, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// DeleteFile removes a single file.
func (s *OSStore) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("deleting %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

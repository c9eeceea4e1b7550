package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage implements AssetStorage on the local filesystem. This is the
// default backend: assets land in a flat uploads directory which the server
// also serves statically.
type LocalStorage struct {
	dir string
}

// NewLocalStorage constructs a storage rooted at dir. The directory is
// created on first save, not here.
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Dir returns the storage root.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes the content to <dir>/<name>. The write goes to a temp file
// first so a failed copy never leaves a truncated asset under its final name.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp upload file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write upload %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close upload %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("move upload into place %s: %w", name, err)
	}

	return name, nil
}

// StoredFile describes one asset in the storage root.
type StoredFile struct {
	Name    string
	ModTime time.Time
}

// List enumerates stored assets. Temp files from in-flight saves are skipped.
func (s *LocalStorage) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read upload directory %s: %w", s.dir, err)
	}

	var files []StoredFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) > 0 && name[0] == '.' {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{Name: name, ModTime: info.ModTime()})
	}
	return files, nil
}

// Remove deletes a stored asset. Removing a missing asset is not an error.
func (s *LocalStorage) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload %s: %w", name, err)
	}
	return nil
}

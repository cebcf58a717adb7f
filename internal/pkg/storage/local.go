package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalSource reads uploads from the local filesystem. Relative paths are resolved
// against BasePath and may not leave it.
type LocalSource struct {
	BasePath string
	MaxSize  int64
}

// NewLocalSource creates a local source rooted at basePath
func NewLocalSource(basePath string) *LocalSource {
	return &LocalSource{BasePath: basePath, MaxSize: DefaultMaxObjectSize}
}

// Resolve returns the filesystem path for path
func (s *LocalSource) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if filepath.IsAbs(path) || s.BasePath == "" {
		return filepath.Clean(path), nil
	}

	base := filepath.Clean(s.BasePath)
	full := filepath.Join(base, path)
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes upload directory", path)
	}
	return full, nil
}

// Open reads the file at path
func (s *LocalSource) Open(ctx context.Context, path string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, full)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", full, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", full, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, full)
	}

	data, err := readLimited(file, s.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", full, err)
	}

	return &Object{
		Path:       full,
		Name:       info.Name(),
		Data:       data,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
		CreatedAt:  createdAt(info),
	}, nil
}

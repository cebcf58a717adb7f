package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// DefaultMaxObjectSize caps how much of a source object is read into memory
const DefaultMaxObjectSize int64 = 64 << 20

var (
	// ErrNotFound is returned when the requested object does not exist
	ErrNotFound = errors.New("source object not found")
	// ErrTooLarge is returned when an object exceeds the configured size limit
	ErrTooLarge = errors.New("source object too large")
)

// Object is an uploaded file loaded from a source backend
type Object struct {
	Path       string
	Name       string
	Data       []byte
	Size       int64
	ModifiedAt time.Time
	CreatedAt  time.Time
}

// Source loads uploaded files by the path the upload application recorded
type Source interface {
	Open(ctx context.Context, path string) (*Object, error)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxObjectSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache key format for verification status
const (
	StatusKeyFormat          = "authenticity:status:%s:%s"           // Format: authenticity:status:<type>:<id>
	StatusTimestampKeyFormat = "authenticity:status:timestamp:%s:%s" // Format: authenticity:status:timestamp:<type>:<id>
)

// DefaultStatusTTL is how long a status stays readable after its last change
const DefaultStatusTTL = 24 * time.Hour

// ErrMiss is returned when no status is cached for an image
var ErrMiss = errors.New("cache miss")

// StatusCache publishes verification progress so the upload application can poll it
// without touching the database.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache creates a status cache on client. ttl <= 0 selects DefaultStatusTTL.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &StatusCache{client: client, ttl: ttl}
}

// SetStatus stores the status of an image together with the time it was set
func (c *StatusCache) SetStatus(ctx context.Context, imageType, imageID, status string) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(StatusKeyFormat, imageType, imageID), status, c.ttl)
	pipe.Set(ctx, fmt.Sprintf(StatusTimestampKeyFormat, imageType, imageID), time.Now().UTC().Format(time.RFC3339), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// GetStatus returns the cached status of an image
func (c *StatusCache) GetStatus(ctx context.Context, imageType, imageID string) (string, error) {
	status, err := c.client.Get(ctx, fmt.Sprintf(StatusKeyFormat, imageType, imageID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return status, err
}

// GetStatusTimestamp returns when the cached status was set
func (c *StatusCache) GetStatusTimestamp(ctx context.Context, imageType, imageID string) (time.Time, error) {
	value, err := c.client.Get(ctx, fmt.Sprintf(StatusTimestampKeyFormat, imageType, imageID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

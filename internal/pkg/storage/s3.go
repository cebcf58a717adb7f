package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/ManuelReschke/PixelProof/internal/pkg/env"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"
)

// S3Config holds the S3 source configuration
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	KeyPrefix       string
}

// S3ConfigFromEnv loads the S3 source configuration from environment variables
func S3ConfigFromEnv() (*S3Config, error) {
	cfg := &S3Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-west-001"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		KeyPrefix:       env.GetEnv("S3_KEY_PREFIX", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields
func (c *S3Config) Validate() error {
	if c.AccessKeyID == "" {
		return errors.New("S3_ACCESS_KEY_ID is required for the s3 source")
	}
	if c.SecretAccessKey == "" {
		return errors.New("S3_SECRET_ACCESS_KEY is required for the s3 source")
	}
	if c.BucketName == "" {
		return errors.New("S3_BUCKET_NAME is required for the s3 source")
	}
	return nil
}

// ObjectKey maps an upload path onto an object key
func (c *S3Config) ObjectKey(filePath string) string {
	key := strings.TrimLeft(path.Clean("/"+filePath), "/")
	if c.KeyPrefix == "" {
		return key
	}
	return path.Join(c.KeyPrefix, key)
}

// S3Source reads uploads from an S3 compatible bucket
type S3Source struct {
	client  *s3.Client
	config  *S3Config
	MaxSize int64
}

// NewS3Source creates an S3 source
func NewS3Source(ctx context.Context, cfg *S3Config) (*S3Source, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible services (like Backblaze B2) often need path-style URLs
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	log.Infof("[Storage] Reading uploads from s3://%s", cfg.BucketName)
	return &S3Source{client: client, config: cfg, MaxSize: DefaultMaxObjectSize}, nil
}

// Open downloads the object stored for filePath
func (s *S3Source) Open(ctx context.Context, filePath string) (*Object, error) {
	key := s.config.ObjectKey(filePath)

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.config.BucketName, key)
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := readLimited(result.Body, s.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.config.BucketName, key, err)
	}

	var modified time.Time
	if result.LastModified != nil {
		modified = *result.LastModified
	}

	return &Object{
		Path:       "s3://" + s.config.BucketName + "/" + key,
		Name:       path.Base(key),
		Data:       data,
		Size:       int64(len(data)),
		ModifiedAt: modified,
		CreatedAt:  modified,
	}, nil
}

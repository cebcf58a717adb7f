package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PixelProof/app/repository"
	"github.com/ManuelReschke/PixelProof/internal/pkg/cache"
	"github.com/ManuelReschke/PixelProof/internal/pkg/database"
	"github.com/ManuelReschke/PixelProof/internal/pkg/env"
	"github.com/ManuelReschke/PixelProof/internal/pkg/storage"
	"github.com/ManuelReschke/PixelProof/internal/pkg/verification"
)

// Source backends
const (
	sourceLocal = "local"
	sourceS3    = "s3"
)

// application holds the handles a command needs. Close releases them.
type application struct {
	db      *gorm.DB
	redis   *redis.Client
	status  *cache.StatusCache
	repos   *repository.Repositories
	service *verification.Service
}

func openApplication(ctx context.Context) (*application, error) {
	db, err := database.Open(database.ConfigFromEnv())
	if err != nil {
		return nil, err
	}
	app := &application{db: db, repos: repository.NewRepositories(db)}

	source, err := newSource(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	var opts []verification.Option
	if cfg, enabled := cache.ConfigFromEnv(); enabled {
		client, err := cache.NewClient(ctx, cfg)
		if err != nil {
			log.Warnf("[Cache] Status cache disabled: %v", err)
		} else {
			app.redis = client
			app.status = cache.NewStatusCache(client, env.GetDuration("CACHE_STATUS_TTL", cache.DefaultStatusTTL))
			opts = append(opts, verification.WithStatusCache(app.status))
		}
	}

	app.service, err = verification.NewService(ctx, app.repos, source, opts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func newSource(ctx context.Context) (storage.Source, error) {
	switch backend := env.GetEnv("SOURCE_BACKEND", sourceLocal); backend {
	case sourceLocal:
		return storage.NewLocalSource(env.GetEnv("UPLOAD_BASE_PATH", ".")), nil
	case sourceS3:
		cfg, err := storage.S3ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		return storage.NewS3Source(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown SOURCE_BACKEND %q (want %s or %s)", backend, sourceLocal, sourceS3)
	}
}

// Close releases the database and cache connections
func (a *application) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warnf("[Cache] Close failed: %v", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warnf("[Database] Close failed: %v", err)
		}
	}
}

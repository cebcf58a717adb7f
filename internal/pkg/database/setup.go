package database

import (
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// Supported drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config describes how to reach the relational store
type Config struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	Path        string // sqlite file, ":memory:" for an in-process database
	AutoMigrate bool
	Retries     int
	RetryDelay  time.Duration
}

// ConfigFromEnv reads the DB_* variables
func ConfigFromEnv() Config {
	return Config{
		Driver:      env.GetEnv("DB_DRIVER", DriverMySQL),
		Host:        env.GetEnv("DB_HOST", "127.0.0.1"),
		Port:        env.GetEnv("DB_PORT", "3306"),
		User:        env.GetEnv("DB_USER", ""),
		Password:    env.GetEnv("DB_PASSWORD", ""),
		Name:        env.GetEnv("DB_NAME", ""),
		Path:        env.GetEnv("DB_PATH", "pixelproof.db"),
		AutoMigrate: env.GetBool("DB_AUTO_MIGRATE", false),
		Retries:     maxRetries,
		RetryDelay:  retryDelay,
	}
}

// DSN returns the MySQL data source name
func (c Config) DSN() string {
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL, "":
		return mysql.New(mysql.Config{
			DSN:                       c.DSN(), // data source name
			DefaultStringSize:         256,     // default size for string fields
			DisableDatetimePrecision:  true,    // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,    // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,    // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false,   // auto configure based on currently MySQL version
		}), nil
	case DriverSQLite:
		return sqlite.Open(c.Path), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// Open connects to the store, retrying while the server comes up
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}

	var db *gorm.DB
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: newLogger(),
		})
		if err == nil {
			break
		}

		log.Warnf("[Database] Failed to connect (try %d/%d): %v", i+1, retries, err)
		if i < retries-1 {
			log.Infof("[Database] Retrying in %v...", cfg.RetryDelay)
			time.Sleep(cfg.RetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// one connection keeps ":memory:" databases shared and serializes sqlite writers
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// newLogger writes slow queries and errors to stderr so stdout stays free for command output
func newLogger() logger.Interface {
	return logger.New(stdlog.New(os.Stderr, "\r\n", stdlog.LstdFlags), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// AutoMigrate creates or updates the authenticity tables from the gorm models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.AuthenticityMetadata{},
		&models.AdminReviewItem{},
		&models.AuditLogEntry{},
		&models.VerificationQueueEntry{},
		&models.AuthenticitySetting{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

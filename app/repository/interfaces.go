package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/PixelProof/app/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// ErrClaimLost is returned when a queue entry is no longer held by the claim being finished
var ErrClaimLost = errors.New("queue entry claim lost")

// AuthenticityRepository defines the operations on image_authenticity_metadata
type AuthenticityRepository interface {
	GetByImage(ctx context.Context, ref models.ImageRef) (*models.AuthenticityMetadata, error)
	Upsert(ctx context.Context, record *models.AuthenticityMetadata) error
	UpsertFailed(ctx context.Context, record *models.AuthenticityMetadata) error
	ListFingerprints(ctx context.Context, exclude models.ImageRef) ([]models.FingerprintRecord, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByRiskLevel(ctx context.Context) (map[string]int64, error)
}

// ReviewRepository defines the operations on admin_review_queue
type ReviewRepository interface {
	GetByImage(ctx context.Context, ref models.ImageRef) (*models.AdminReviewItem, error)
	Upsert(ctx context.Context, item *models.AdminReviewItem) error
	CountByDecision(ctx context.Context) (map[string]int64, error)
}

// AuditRepository defines the operations on authenticity_audit_log
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
	ListByImage(ctx context.Context, ref models.ImageRef) ([]models.AuditLogEntry, error)
}

// VerificationQueueRepository defines the operations on image_verification_queue
type VerificationQueueRepository interface {
	Enqueue(ctx context.Context, entry *models.VerificationQueueEntry) error
	GetByID(ctx context.Context, id uint) (*models.VerificationQueueEntry, error)
	ListQueued(ctx context.Context, limit int) ([]models.VerificationQueueEntry, error)
	Claim(ctx context.Context, entry *models.VerificationQueueEntry) (bool, error)
	Complete(ctx context.Context, entry *models.VerificationQueueEntry) error
	Fail(ctx context.Context, entry *models.VerificationQueueEntry, message string) error
	ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// SettingRepository defines the operations on authenticity_settings
type SettingRepository interface {
	List(ctx context.Context) ([]models.AuthenticitySetting, error)
	Get(ctx context.Context, key string) (*models.AuthenticitySetting, error)
	Save(ctx context.Context, setting *models.AuthenticitySetting) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	db           *gorm.DB
	Authenticity AuthenticityRepository
	Review       ReviewRepository
	Audit        AuditRepository
	Queue        VerificationQueueRepository
	Setting      SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Authenticity: NewAuthenticityRepository(db),
		Review:       NewReviewRepository(db),
		Audit:        NewAuditRepository(db),
		Queue:        NewVerificationQueueRepository(db),
		Setting:      NewSettingRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// notFound maps gorm's not-found error onto ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// groupCount runs a SELECT column, COUNT(*) ... GROUP BY column on model
func groupCount(ctx context.Context, db *gorm.DB, model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Total int64
	}
	err := db.WithContext(ctx).Model(model).
		Select(column + " AS `key`, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Total
	}
	return counts, nil
}

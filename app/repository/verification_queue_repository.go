package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/PixelProof/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// verificationQueueRepository implements the VerificationQueueRepository interface
type verificationQueueRepository struct {
	db *gorm.DB
}

// NewVerificationQueueRepository creates a new verification queue repository instance
func NewVerificationQueueRepository(db *gorm.DB) VerificationQueueRepository {
	return &verificationQueueRepository{db: db}
}

// Enqueue adds an image to the queue. An existing entry for the same image is reset to queued
// with the new priority and a fresh attempt counter.
func (r *verificationQueueRepository) Enqueue(ctx context.Context, entry *models.VerificationQueueEntry) error {
	entry.Status = models.QueueStatusQueued
	entry.Attempts = 0
	entry.ClaimedAt = nil
	entry.ProcessedAt = nil
	entry.ErrorMessage = nil
	if entry.QueuedAt.IsZero() {
		entry.QueuedAt = time.Now()
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns: imageConflictColumns,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"file_path":     entry.FilePath,
			"user_id":       entry.UserID,
			"tutorial_id":   entry.TutorialID,
			"priority":      entry.Priority,
			"status":        models.QueueStatusQueued,
			"attempts":      0,
			"queued_at":     entry.QueuedAt,
			"claimed_at":    nil,
			"processed_at":  nil,
			"error_message": nil,
		}),
	}).Create(entry).Error; err != nil {
		return err
	}

	var stored models.VerificationQueueEntry
	if err := db.Where("image_id = ? AND image_type = ?", entry.ImageID, entry.ImageType).
		First(&stored).Error; err != nil {
		return err
	}
	*entry = stored
	return nil
}

// GetByID returns a queue entry by its id
func (r *verificationQueueRepository) GetByID(ctx context.Context, id uint) (*models.VerificationQueueEntry, error) {
	var entry models.VerificationQueueEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

// ListQueued returns up to limit queued entries, highest priority and oldest first
func (r *verificationQueueRepository) ListQueued(ctx context.Context, limit int) ([]models.VerificationQueueEntry, error) {
	var entries []models.VerificationQueueEntry
	err := r.db.WithContext(ctx).
		Where("status = ?", models.QueueStatusQueued).
		Order("priority DESC").
		Order("queued_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Claim moves a queued entry to processing. It reports false when another worker
// claimed the entry first. The attempts counter read with the entry acts as the claim
// token: on success entry carries the new count, which Complete and Fail check.
func (r *verificationQueueRepository) Claim(ctx context.Context, entry *models.VerificationQueueEntry) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.VerificationQueueEntry{}).
		Where("id = ? AND status = ? AND attempts = ?", entry.ID, models.QueueStatusQueued, entry.Attempts).
		Updates(map[string]interface{}{
			"status":     models.QueueStatusProcessing,
			"attempts":   gorm.Expr("attempts + 1"),
			"claimed_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("claim queue entry %d: %w", entry.ID, res.Error)
	}
	if res.RowsAffected != 1 {
		return false, nil
	}

	entry.Status = models.QueueStatusProcessing
	entry.Attempts++
	entry.ClaimedAt = &now
	return true, nil
}

// Complete marks a claimed entry as completed
func (r *verificationQueueRepository) Complete(ctx context.Context, entry *models.VerificationQueueEntry) error {
	return r.finish(ctx, entry, models.QueueStatusCompleted, nil)
}

// Fail marks a claimed entry as failed with the given message
func (r *verificationQueueRepository) Fail(ctx context.Context, entry *models.VerificationQueueEntry, message string) error {
	return r.finish(ctx, entry, models.QueueStatusFailed, &message)
}

// finish only touches the row while it is still processing under the same claim,
// so a worker whose entry was reclaimed cannot overwrite the new owner's state
func (r *verificationQueueRepository) finish(ctx context.Context, entry *models.VerificationQueueEntry, status models.QueueStatus, message *string) error {
	res := r.db.WithContext(ctx).
		Model(&models.VerificationQueueEntry{}).
		Where("id = ? AND status = ? AND attempts = ?", entry.ID, models.QueueStatusProcessing, entry.Attempts).
		Updates(map[string]interface{}{
			"status":        status,
			"processed_at":  time.Now(),
			"error_message": message,
		})
	if res.Error != nil {
		return fmt.Errorf("finish queue entry %d: %w", entry.ID, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("finish queue entry %d as %s: %w", entry.ID, status, ErrClaimLost)
	}
	return nil
}

// ReclaimStale returns entries stuck in processing since before cutoff to the queue
func (r *verificationQueueRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.VerificationQueueEntry{}).
		Where("status = ? AND claimed_at IS NOT NULL AND claimed_at < ?", models.QueueStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":     models.QueueStatusQueued,
			"claimed_at": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("reclaim stale entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountByStatus returns the number of entries per queue status
func (r *verificationQueueRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return groupCount(ctx, r.db, &models.VerificationQueueEntry{}, "status")
}

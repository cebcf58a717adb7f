package repository

import (
	"context"

	"github.com/ManuelReschke/PixelProof/app/models"
	"gorm.io/gorm"
)

// auditRepository implements the AuditRepository interface
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository instance
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Append writes a new audit entry
func (r *auditRepository) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.PerformedByType == "" {
		entry.PerformedByType = models.PerformerSystem
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByImage returns the audit history of an image, oldest first
func (r *auditRepository) ListByImage(ctx context.Context, ref models.ImageRef) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("image_id = ? AND image_type = ?", ref.ImageID, ref.ImageType).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

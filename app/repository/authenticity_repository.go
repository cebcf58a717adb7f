package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/PixelProof/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// authenticityRepository implements the AuthenticityRepository interface
type authenticityRepository struct {
	db *gorm.DB
}

// NewAuthenticityRepository creates a new authenticity repository instance
func NewAuthenticityRepository(db *gorm.DB) AuthenticityRepository {
	return &authenticityRepository{db: db}
}

var imageConflictColumns = []clause.Column{
	{Name: "image_id"},
	{Name: "image_type"},
}

// GetByImage returns the authenticity record of an image
func (r *authenticityRepository) GetByImage(ctx context.Context, ref models.ImageRef) (*models.AuthenticityMetadata, error) {
	var record models.AuthenticityMetadata
	err := r.db.WithContext(ctx).
		Where("image_id = ? AND image_type = ?", ref.ImageID, ref.ImageType).
		First(&record).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}

// Upsert inserts the record or replaces every analysis column of the existing row
func (r *authenticityRepository) Upsert(ctx context.Context, record *models.AuthenticityMetadata) error {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns: imageConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"file_path",
			"original_filename",
			"file_size",
			"mime_type",
			"image_hash",
			"perceptual_hash",
			"metadata_extracted",
			"camera_info",
			"editing_software",
			"authenticity_score",
			"risk_level",
			"verification_status",
			"verification_method",
			"similarity_matches",
			"updated_at",
		}),
	}).Create(record).Error; err != nil {
		return err
	}

	var stored models.AuthenticityMetadata
	if err := db.Where("image_id = ? AND image_type = ?", record.ImageID, record.ImageType).
		First(&stored).Error; err != nil {
		return err
	}
	*record = stored
	return nil
}

// UpsertFailed records a failed run. An existing row keeps its analysis columns
// and only the status changes, a missing row is created with what is known.
// Rows under manual override keep their status.
func (r *authenticityRepository) UpsertFailed(ctx context.Context, record *models.AuthenticityMetadata) error {
	record.VerificationStatus = models.VerificationStatusFailed
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: imageConflictColumns,
		DoUpdates: clause.Set{
			{
				Column: clause.Column{Name: "verification_status"},
				Value: gorm.Expr("CASE WHEN verification_method = ? THEN verification_status ELSE ? END",
					models.VerificationMethodManualOverride, models.VerificationStatusFailed),
			},
			{Column: clause.Column{Name: "updated_at"}, Value: time.Now()},
		},
	}).Create(record).Error
}

// ListFingerprints returns every stored perceptual hash except the one of exclude
func (r *authenticityRepository) ListFingerprints(ctx context.Context, exclude models.ImageRef) ([]models.FingerprintRecord, error) {
	var records []models.FingerprintRecord
	err := r.db.WithContext(ctx).
		Model(&models.AuthenticityMetadata{}).
		Select("image_id, image_type, perceptual_hash, file_path, created_at").
		Where("perceptual_hash IS NOT NULL AND perceptual_hash <> ''").
		Where("NOT (image_id = ? AND image_type = ?)", exclude.ImageID, exclude.ImageType).
		Order("id ASC").
		Scan(&records).Error
	return records, err
}

// CountByStatus returns the number of records per verification status
func (r *authenticityRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return groupCount(ctx, r.db, &models.AuthenticityMetadata{}, "verification_status")
}

// CountByRiskLevel returns the number of records per risk level
func (r *authenticityRepository) CountByRiskLevel(ctx context.Context) (map[string]int64, error) {
	return groupCount(ctx, r.db, &models.AuthenticityMetadata{}, "risk_level")
}

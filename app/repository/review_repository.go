package repository

import (
	"context"

	"github.com/ManuelReschke/PixelProof/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reviewRepository implements the ReviewRepository interface
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// GetByImage returns the review item of an image
func (r *reviewRepository) GetByImage(ctx context.Context, ref models.ImageRef) (*models.AdminReviewItem, error) {
	var item models.AdminReviewItem
	err := r.db.WithContext(ctx).
		Where("image_id = ? AND image_type = ?", ref.ImageID, ref.ImageType).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// Upsert creates a pending review item or refreshes score and reasons of the existing one.
// The moderator columns are never touched on update.
func (r *reviewRepository) Upsert(ctx context.Context, item *models.AdminReviewItem) error {
	if item.AdminDecision == "" {
		item.AdminDecision = models.AdminDecisionPending
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: imageConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"authenticity_score",
			"risk_level",
			"flagged_reasons",
			"flagged_at",
		}),
	}).Create(item).Error
}

// CountByDecision returns the number of review items per admin decision
func (r *reviewRepository) CountByDecision(ctx context.Context) (map[string]int64, error) {
	return groupCount(ctx, r.db, &models.AdminReviewItem{}, "admin_decision")
}

package repository

import (
	"context"

	"github.com/ManuelReschke/PixelProof/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingRepository implements the SettingRepository interface
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new setting repository instance
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// List returns every setting ordered by key
func (r *settingRepository) List(ctx context.Context) ([]models.AuthenticitySetting, error) {
	var settings []models.AuthenticitySetting
	err := r.db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error
	return settings, err
}

// Get retrieves a setting by key
func (r *settingRepository) Get(ctx context.Context, key string) (*models.AuthenticitySetting, error) {
	var setting models.AuthenticitySetting
	// column is `setting_key` (see gorm tag in models.AuthenticitySetting)
	err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &setting, nil
}

// Save creates the setting or updates value, type and author of an existing key
func (r *settingRepository) Save(ctx context.Context, setting *models.AuthenticitySetting) error {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "setting_type", "updated_by", "updated_at"}),
	}).Create(setting).Error; err != nil {
		return err
	}
	stored, err := r.Get(ctx, setting.Key)
	if err != nil {
		return err
	}
	*setting = *stored
	return nil
}

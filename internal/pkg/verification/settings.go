package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/app/repository"
	"github.com/ManuelReschke/PixelProof/internal/pkg/scoring"
)

// settingsAuditImageType is the image_type audit rows for setting changes are filed under
const settingsAuditImageType = "system"

// ListSettings returns every stored setting
func (s *Service) ListSettings(ctx context.Context) ([]models.AuthenticitySetting, error) {
	settings, err := s.repos.Setting.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return settings, nil
}

// UpdateSetting validates and stores a setting and audits the change. Threshold keys
// are checked against the other stored thresholds so the set stays consistent.
// Running services keep the thresholds they loaded at start.
func (s *Service) UpdateSetting(ctx context.Context, key, value string, adminID *uint) (*models.AuthenticitySetting, error) {
	setting := &models.AuthenticitySetting{
		Key:       key,
		Value:     value,
		Type:      models.SettingTypeFor(key),
		UpdatedBy: adminID,
	}

	var oldValue *string
	existing, err := s.repos.Setting.Get(ctx, key)
	switch {
	case err == nil:
		oldValue = &existing.Value
		setting.Type = existing.Type
		setting.Description = existing.Description
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := setting.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if models.SettingTypeFor(key) == models.SettingTypeNumber {
		if err := s.checkThresholds(ctx, setting); err != nil {
			return nil, err
		}
	}

	performer := models.PerformerSystem
	if adminID != nil {
		performer = models.PerformerAdmin
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Setting.Save(ctx, setting); err != nil {
			return fmt.Errorf("save setting: %w", err)
		}
		return tx.Audit.Append(ctx, &models.AuditLogEntry{
			ImageID:         key,
			ImageType:       settingsAuditImageType,
			Action:          models.AuditActionSettingsUpdated,
			PerformedBy:     adminID,
			PerformedByType: performer,
			Details: models.NewJSON(map[string]interface{}{
				"setting_key": key,
				"old_value":   oldValue,
				"new_value":   value,
			}),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Infof("[Verification] Setting %s updated to %s", key, value)
	return setting, nil
}

func (s *Service) checkThresholds(ctx context.Context, changed *models.AuthenticitySetting) error {
	settings, err := s.repos.Setting.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	merged := make([]models.AuthenticitySetting, 0, len(settings)+1)
	for _, st := range settings {
		if st.Key != changed.Key {
			merged = append(merged, st)
		}
	}
	merged = append(merged, *changed)

	if _, err := scoring.ThresholdsFromSettings(merged); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

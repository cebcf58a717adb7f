package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Setting keys that drive the authenticity scorer
const (
	SettingSuspiciousScoreThreshold       = "suspicious_score_threshold"
	SettingHighlySuspiciousScoreThreshold = "highly_suspicious_score_threshold"
	SettingSimilarityThreshold            = "similarity_threshold"
	SettingAutoApproveCleanThreshold      = "auto_approve_clean_threshold"
)

// Setting value types
const (
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeString  = "string"
)

// AuthenticitySetting is a runtime-configurable key/value pair
type AuthenticitySetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"column:setting_key;size:64;not null;uniqueIndex" json:"key" validate:"required,min=1,max=64"`
	Value       string    `gorm:"column:setting_value;type:text" json:"value"`
	Type        string    `gorm:"column:setting_type;size:20;not null;default:'string'" json:"type" validate:"required,oneof=number boolean string"`
	Description string    `gorm:"type:text" json:"description"`
	UpdatedBy   *uint     `json:"updated_by,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName maps the model onto the shared schema
func (AuthenticitySetting) TableName() string {
	return "authenticity_settings"
}

// Validate checks the setting and that its value matches its declared type
func (s *AuthenticitySetting) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return err
	}
	switch s.Type {
	case SettingTypeNumber:
		if _, err := strconv.ParseFloat(s.Value, 64); err != nil {
			return fmt.Errorf("setting %s: %q is not a number", s.Key, s.Value)
		}
	case SettingTypeBoolean:
		if _, err := strconv.ParseBool(s.Value); err != nil {
			return fmt.Errorf("setting %s: %q is not a boolean", s.Key, s.Value)
		}
	}
	return nil
}

// Float returns the value parsed as a number
func (s *AuthenticitySetting) Float() (float64, error) {
	return strconv.ParseFloat(s.Value, 64)
}

// SettingTypeFor returns the declared type of a known setting key
func SettingTypeFor(key string) string {
	switch key {
	case SettingSuspiciousScoreThreshold, SettingHighlySuspiciousScoreThreshold,
		SettingSimilarityThreshold, SettingAutoApproveCleanThreshold:
		return SettingTypeNumber
	default:
		return SettingTypeString
	}
}

package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/PixelProof/app/models"
)

// ErrConfig is returned when stored thresholds are missing or invalid
var ErrConfig = errors.New("invalid authenticity thresholds")

// Thresholds are the runtime-configurable cut-offs of the scorer and the status decision.
// Score thresholds keep the stored value as is; integer scores are compared against them.
type Thresholds struct {
	SuspiciousScore       float64 `json:"suspicious_score_threshold" validate:"gte=0,lte=100"`
	HighlySuspiciousScore float64 `json:"highly_suspicious_score_threshold" validate:"gte=0,lte=100,gtefield=SuspiciousScore"`
	Similarity            float64 `json:"similarity_threshold" validate:"gt=0,lte=1"`
	AutoApproveClean      float64 `json:"auto_approve_clean_threshold" validate:"gte=0,lte=100,ltefield=SuspiciousScore"`
}

// DefaultThresholds returns the documented defaults
func DefaultThresholds() Thresholds {
	return Thresholds{
		SuspiciousScore:       60,
		HighlySuspiciousScore: 80,
		Similarity:            0.85,
		AutoApproveClean:      30,
	}
}

// Validate checks ranges and ordering of the thresholds
func (t Thresholds) Validate() error {
	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}

// ThresholdsFromSettings applies stored settings on top of the defaults. The returned
// thresholds are always usable: invalid values keep their default and the error,
// wrapping ErrConfig, says which.
func ThresholdsFromSettings(settings []models.AuthenticitySetting) (Thresholds, error) {
	t := DefaultThresholds()
	var errs []error

	for _, s := range settings {
		var target *float64
		switch s.Key {
		case models.SettingSuspiciousScoreThreshold:
			target = &t.SuspiciousScore
		case models.SettingHighlySuspiciousScoreThreshold:
			target = &t.HighlySuspiciousScore
		case models.SettingAutoApproveCleanThreshold:
			target = &t.AutoApproveClean
		case models.SettingSimilarityThreshold:
			target = &t.Similarity
		default:
			continue
		}

		v, err := s.Float()
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", s.Key, s.Value))
			continue
		}
		*target = v
	}

	if err := t.Validate(); err != nil {
		errs = append(errs, err)
		t = DefaultThresholds()
	}
	if len(errs) > 0 {
		return t, fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
	}
	return t, nil
}

// RiskLevelFor buckets score. Higher scores never map to a lower risk level.
func RiskLevelFor(score int, t Thresholds) models.RiskLevel {
	v := float64(score)
	switch {
	case v >= t.HighlySuspiciousScore:
		return models.RiskLevelHighlySuspicious
	case v >= t.SuspiciousScore:
		return models.RiskLevelSuspicious
	default:
		return models.RiskLevelClean
	}
}

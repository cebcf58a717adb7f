package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PixelProof/app/models"
)

func setting(key, value string) models.AuthenticitySetting {
	return models.AuthenticitySetting{Key: key, Value: value, Type: models.SettingTypeNumber}
}

func TestDefaultThresholdsAreValid(t *testing.T) {
	d := DefaultThresholds()
	require.NoError(t, d.Validate())
	assert.Equal(t, 60.0, d.SuspiciousScore)
	assert.Equal(t, 80.0, d.HighlySuspiciousScore)
	assert.Equal(t, 0.85, d.Similarity)
	assert.Equal(t, 30.0, d.AutoApproveClean)
}

func TestThresholdsFromSettings(t *testing.T) {
	got, err := ThresholdsFromSettings([]models.AuthenticitySetting{
		setting(models.SettingSuspiciousScoreThreshold, "50"),
		setting(models.SettingHighlySuspiciousScoreThreshold, "75.0"),
		setting(models.SettingSimilarityThreshold, "0.9"),
		setting(models.SettingAutoApproveCleanThreshold, "25"),
		{Key: "unrelated", Value: "whatever", Type: models.SettingTypeString},
	})
	require.NoError(t, err)
	assert.Equal(t, Thresholds{SuspiciousScore: 50, HighlySuspiciousScore: 75, Similarity: 0.9, AutoApproveClean: 25}, got)
}

func TestThresholdsFromSettingsKeepsFractions(t *testing.T) {
	got, err := ThresholdsFromSettings([]models.AuthenticitySetting{
		setting(models.SettingSuspiciousScoreThreshold, "59.4"),
		setting(models.SettingAutoApproveCleanThreshold, "30.6"),
	})
	require.NoError(t, err)
	assert.Equal(t, 59.4, got.SuspiciousScore)
	assert.Equal(t, 30.6, got.AutoApproveClean)

	assert.Equal(t, models.RiskLevelClean, RiskLevelFor(59, got))
	assert.Equal(t, models.RiskLevelSuspicious, RiskLevelFor(60, got))
}

func TestThresholdsFromSettingsEmpty(t *testing.T) {
	got, err := ThresholdsFromSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), got)
}

func TestThresholdsFromSettingsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		settings []models.AuthenticitySetting
		want     Thresholds
	}{
		{
			name:     "not a number keeps default for that key",
			settings: []models.AuthenticitySetting{setting(models.SettingSuspiciousScoreThreshold, "sixty"), setting(models.SettingSimilarityThreshold, "0.9")},
			want:     Thresholds{SuspiciousScore: 60, HighlySuspiciousScore: 80, Similarity: 0.9, AutoApproveClean: 30},
		},
		{
			name:     "inverted ordering falls back to defaults",
			settings: []models.AuthenticitySetting{setting(models.SettingSuspiciousScoreThreshold, "90"), setting(models.SettingHighlySuspiciousScoreThreshold, "70")},
			want:     DefaultThresholds(),
		},
		{
			name:     "infinity is not a number",
			settings: []models.AuthenticitySetting{setting(models.SettingHighlySuspiciousScoreThreshold, "Inf")},
			want:     DefaultThresholds(),
		},
		{
			name:     "similarity out of range",
			settings: []models.AuthenticitySetting{setting(models.SettingSimilarityThreshold, "1.5")},
			want:     DefaultThresholds(),
		},
		{
			name:     "auto approve above suspicious",
			settings: []models.AuthenticitySetting{setting(models.SettingAutoApproveCleanThreshold, "70")},
			want:     DefaultThresholds(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ThresholdsFromSettings(tt.settings)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Equal(t, tt.want, got)
		})
	}
}

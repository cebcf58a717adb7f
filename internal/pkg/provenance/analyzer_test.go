package provenance

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/PixelProof/app/models"
)

func metaWith(tags models.ExifTags) models.ExtractedMetadata {
	return models.ExtractedMetadata{Width: 100, Height: 100, Tags: tags}
}

func TestAnalyzeCamera(t *testing.T) {
	a := NewAnalyzer()
	info := a.AnalyzeCamera(metaWith(models.ExifTags{
		Make:             "NIKON CORPORATION",
		Model:            "NIKON D750",
		ISOSpeedRatings:  "400",
		FNumber:          "28/10",
		ExposureTime:     "1/250",
		FocalLength:      "50/1",
		DateTimeOriginal: "2022:11:03 08:00:00",
		HasGPS:           true,
		GPSData:          "48.137154,11.576124",
		Software:         "Ver.1.00",
	}))

	assert.True(t, info.HasCamera())
	assert.Equal(t, "NIKON D750", info.Model)
	assert.Equal(t, "400", info.ISO)
	assert.Equal(t, "28/10", info.Aperture)
	assert.Equal(t, "1/250", info.ShutterSpeed)
	assert.True(t, info.HasGPS)
	assert.Equal(t, "Ver.1.00", info.Software)

	empty := a.AnalyzeCamera(metaWith(models.ExifTags{}))
	assert.False(t, empty.HasCamera())
	assert.False(t, empty.HasGPS)
}

func TestDetectEditingSoftware(t *testing.T) {
	tests := []struct {
		name       string
		software   string
		wantTools  []string
		wantSev    []models.SeverityClass
		confidence string
	}{
		{name: "no software tag", software: "", wantTools: nil, confidence: models.ConfidenceLow},
		{name: "camera firmware", software: "Firmware 1.2.0", wantTools: nil, confidence: models.ConfidenceLow},
		{
			name:       "photoshop, one tool despite two signatures",
			software:   "Adobe Photoshop 2023 (Windows)",
			wantTools:  []string{"Adobe Photoshop"},
			wantSev:    []models.SeverityClass{models.SeverityProfessional},
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "case insensitive",
			software:   "gimp 2.10.34",
			wantTools:  []string{"GIMP"},
			wantSev:    []models.SeverityClass{models.SeverityProfessional},
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "mobile app",
			software:   "Facetune2",
			wantTools:  []string{"Facetune"},
			wantSev:    []models.SeverityClass{models.SeverityMobile},
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "two tools",
			software:   "Photoshop; PicsArt",
			wantTools:  []string{"Adobe Photoshop", "PicsArt"},
			wantSev:    []models.SeverityClass{models.SeverityProfessional, models.SeverityMobile},
			confidence: models.ConfidenceHigh,
		},
	}

	a := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := a.DetectEditingSoftware(metaWith(models.ExifTags{Software: tt.software}))

			var names []string
			var sev []models.SeverityClass
			for _, d := range signals.DetectedSoftware {
				names = append(names, d.Name)
				sev = append(sev, d.Severity)
				assert.Equal(t, models.ConfidenceHigh, d.Confidence)
			}
			assert.Equal(t, tt.wantTools, names)
			assert.Equal(t, tt.wantSev, sev)
			assert.Equal(t, tt.confidence, signals.ConfidenceLevel)
			assert.Equal(t, len(tt.wantTools) >= 2, signals.MultipleEdits())
			assert.Equal(t, len(tt.wantTools) >= 2, slices.Contains(signals.EditingIndicators, IndicatorMultipleSoftwareSignatures))
		})
	}
}

func TestEditingIndicators(t *testing.T) {
	a := NewAnalyzer()

	signals := a.DetectEditingSoftware(metaWith(models.ExifTags{ColorSpace: "65535", WhiteBalance: "1"}))
	assert.Equal(t, []string{IndicatorUncalibratedColorSpace, IndicatorManualWhiteBalance}, signals.EditingIndicators)
	assert.Empty(t, signals.DetectedSoftware)

	signals = a.DetectEditingSoftware(metaWith(models.ExifTags{ColorSpace: "1", WhiteBalance: "0"}))
	assert.Empty(t, signals.EditingIndicators)
}

func TestCustomRegistry(t *testing.T) {
	a := NewAnalyzer(Tool{Name: "Darktable", Signatures: []string{"darktable"}, Severity: models.SeverityProfessional})

	signals := a.DetectEditingSoftware(metaWith(models.ExifTags{Software: "darktable 4.4"}))
	if assert.Len(t, signals.DetectedSoftware, 1) {
		assert.Equal(t, "Darktable", signals.DetectedSoftware[0].Name)
	}

	signals = a.DetectEditingSoftware(metaWith(models.ExifTags{Software: "Adobe Photoshop"}))
	assert.Empty(t, signals.DetectedSoftware)
}

func TestDefaultToolsSeverity(t *testing.T) {
	for _, tool := range DefaultTools() {
		assert.NotEmpty(t, tool.Signatures, tool.Name)
		assert.Contains(t, []models.SeverityClass{models.SeverityProfessional, models.SeverityMobile}, tool.Severity, tool.Name)
	}
}

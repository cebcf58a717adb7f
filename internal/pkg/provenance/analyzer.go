// Package provenance derives camera information and editing-software signals from
// extracted image metadata. Nothing in here fails: absent tags give empty results.
package provenance

import (
	"strings"

	"github.com/ManuelReschke/PixelProof/app/models"
)

// Informational editing indicators. They are reported but never scored.
const (
	IndicatorUncalibratedColorSpace     = "uncalibrated_color_space"
	IndicatorManualWhiteBalance         = "manual_white_balance"
	IndicatorMultipleSoftwareSignatures = "multiple_software_signatures"
)

// uncalibratedColorSpace is the EXIF ColorSpace value written by most editors on export
const uncalibratedColorSpace = "65535"

// Analyzer matches metadata against a registry of editing tools
type Analyzer struct {
	tools []Tool
}

// NewAnalyzer creates an analyzer over tools, DefaultTools when none are given
func NewAnalyzer(tools ...Tool) *Analyzer {
	if len(tools) == 0 {
		tools = DefaultTools()
	}
	return &Analyzer{tools: tools}
}

// AnalyzeCamera returns the camera-related view of the metadata
func (a *Analyzer) AnalyzeCamera(meta models.ExtractedMetadata) models.CameraInfo {
	tags := meta.Tags
	return models.CameraInfo{
		Make:              tags.Make,
		Model:             tags.Model,
		ISO:               tags.ISOSpeedRatings,
		Aperture:          tags.FNumber,
		ShutterSpeed:      tags.ExposureTime,
		FocalLength:       tags.FocalLength,
		DateTimeOriginal:  tags.DateTimeOriginal,
		DateTimeDigitized: tags.DateTimeDigitized,
		HasGPS:            tags.HasGPS,
		GPSData:           tags.GPSData,
		Software:          tags.Software,
	}
}

// DetectEditingSoftware matches the software tag case-insensitively against the registry.
// Each tool is reported at most once, whichever of its signatures hit first.
func (a *Analyzer) DetectEditingSoftware(meta models.ExtractedMetadata) models.EditingSignals {
	signals := models.EditingSignals{
		DetectedSoftware:  []models.SoftwareDetection{},
		ConfidenceLevel:   models.ConfidenceLow,
		EditingIndicators: []string{},
	}

	software := strings.ToLower(meta.Tags.Software)
	if software != "" {
		for _, tool := range a.tools {
			for _, signature := range tool.Signatures {
				if strings.Contains(software, strings.ToLower(signature)) {
					signals.DetectedSoftware = append(signals.DetectedSoftware, models.SoftwareDetection{
						Name:       tool.Name,
						Signature:  signature,
						Severity:   tool.Severity,
						Confidence: models.ConfidenceHigh,
					})
					break
				}
			}
		}
	}

	if meta.Tags.ColorSpace == uncalibratedColorSpace {
		signals.EditingIndicators = append(signals.EditingIndicators, IndicatorUncalibratedColorSpace)
	}
	if wb := meta.Tags.WhiteBalance; wb != "" && wb != "0" {
		signals.EditingIndicators = append(signals.EditingIndicators, IndicatorManualWhiteBalance)
	}

	switch {
	case signals.MultipleEdits():
		signals.EditingIndicators = append(signals.EditingIndicators, IndicatorMultipleSoftwareSignatures)
		signals.ConfidenceLevel = models.ConfidenceHigh
	case len(signals.DetectedSoftware) == 1:
		signals.ConfidenceLevel = models.ConfidenceMedium
	}

	return signals
}

package models

import "time"

// SeverityClass groups editing tools by how strongly they indicate manipulation
type SeverityClass string

const (
	SeverityProfessional SeverityClass = "professional"
	SeverityMobile       SeverityClass = "mobile"
)

// Confidence levels reported for editing detections
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// CameraInfo is the camera-related view of the extracted tags
type CameraInfo struct {
	Make              string `json:"make"`
	Model             string `json:"model"`
	ISO               string `json:"iso"`
	Aperture          string `json:"aperture"`
	ShutterSpeed      string `json:"shutter_speed"`
	FocalLength       string `json:"focal_length"`
	DateTimeOriginal  string `json:"datetime_original"`
	DateTimeDigitized string `json:"datetime_digitized"`
	HasGPS            bool   `json:"has_gps"`
	GPSData           string `json:"gps_data,omitempty"`
	Software          string `json:"software"`
}

// HasCamera reports whether make or model is known
func (c CameraInfo) HasCamera() bool {
	return c.Make != "" || c.Model != ""
}

// SoftwareDetection is one registry hit on the software tag
type SoftwareDetection struct {
	Name       string        `json:"name"`
	Signature  string        `json:"signature"`
	Severity   SeverityClass `json:"severity"`
	Confidence string        `json:"confidence"`
}

// EditingSignals collects editing-software detections and informational indicators
type EditingSignals struct {
	DetectedSoftware  []SoftwareDetection `json:"detected_software"`
	ConfidenceLevel   string              `json:"confidence_level"`
	EditingIndicators []string            `json:"editing_indicators"`
}

// MultipleEdits reports whether two or more distinct tools were detected
func (e EditingSignals) MultipleEdits() bool {
	return len(e.DetectedSoftware) >= 2
}

// SimilarityMatch is a previously stored image whose fingerprint is close to the current one
type SimilarityMatch struct {
	ImageID         string     `json:"image_id"`
	ImageType       string     `json:"image_type"`
	SimilarityScore float64    `json:"similarity_score"`
	FilePath        string     `json:"file_path"`
	CreatedAt       *time.Time `json:"created_at"`
}

// FingerprintRecord is the slice of an authenticity record the similarity scan reads
type FingerprintRecord struct {
	ImageID        string
	ImageType      string
	PerceptualHash string
	FilePath       string
	CreatedAt      time.Time
}

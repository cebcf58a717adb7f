package models

import (
	"time"

	"gorm.io/datatypes"
)

// RiskLevel buckets the authenticity score
type RiskLevel string

const (
	RiskLevelClean            RiskLevel = "clean"
	RiskLevelSuspicious       RiskLevel = "suspicious"
	RiskLevelHighlySuspicious RiskLevel = "highly_suspicious"
)

// Rank orders risk levels, higher is riskier
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLevelHighlySuspicious:
		return 2
	case RiskLevelSuspicious:
		return 1
	default:
		return 0
	}
}

// VerificationStatus is the outcome of a verification run
type VerificationStatus string

const (
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusFlagged  VerificationStatus = "flagged"
	VerificationStatusFailed   VerificationStatus = "failed"
)

// VerificationMethod tells whether the status was set by the pipeline or by a human
type VerificationMethod string

const (
	VerificationMethodAutomated      VerificationMethod = "automated"
	VerificationMethodManualOverride VerificationMethod = "manual_override"
)

// AuthenticityMetadata is the durable verification record, one per (image_id, image_type)
type AuthenticityMetadata struct {
	ID                 uint                                  `gorm:"primaryKey" json:"id"`
	ImageID            string                                `gorm:"type:varchar(64);not null;uniqueIndex:idx_authenticity_image" json:"image_id"`
	ImageType          string                                `gorm:"type:varchar(50);not null;uniqueIndex:idx_authenticity_image" json:"image_type"`
	FilePath           string                                `gorm:"type:varchar(512);not null" json:"file_path"`
	OriginalFilename   string                                `gorm:"type:varchar(255)" json:"original_filename"`
	FileSize           int64                                 `gorm:"type:bigint" json:"file_size"`
	MimeType           string                                `gorm:"type:varchar(100)" json:"mime_type"`
	ImageHash          string                                `gorm:"type:varchar(64);index" json:"image_hash"`
	PerceptualHash     string                                `gorm:"type:varchar(80);index" json:"perceptual_hash"`
	MetadataExtracted  datatypes.JSONType[ExtractedMetadata] `gorm:"column:metadata_extracted" json:"metadata_extracted"`
	CameraInfo         datatypes.JSONType[CameraInfo]        `gorm:"column:camera_info" json:"camera_info"`
	EditingSoftware    datatypes.JSONType[EditingSignals]    `gorm:"column:editing_software" json:"editing_software"`
	AuthenticityScore  int                                   `gorm:"type:int;default:0" json:"authenticity_score"`
	RiskLevel          RiskLevel                             `gorm:"type:varchar(20);default:'clean'" json:"risk_level"`
	VerificationStatus VerificationStatus                    `gorm:"type:varchar(20);index" json:"verification_status"`
	VerificationMethod VerificationMethod                    `gorm:"type:varchar(20);default:'automated'" json:"verification_method"`
	SimilarityMatches  datatypes.JSONSlice[SimilarityMatch]  `gorm:"column:similarity_matches" json:"similarity_matches"`
	CreatedAt          time.Time                             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time                             `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName maps the model onto the shared schema
func (AuthenticityMetadata) TableName() string {
	return "image_authenticity_metadata"
}

// Ref returns the image reference of the record
func (m *AuthenticityMetadata) Ref() ImageRef {
	return ImageRef{ImageID: m.ImageID, ImageType: m.ImageType}
}

// IsManualOverride reports whether a human has fixed the status of this record
func (m *AuthenticityMetadata) IsManualOverride() bool {
	return m.VerificationMethod == VerificationMethodManualOverride
}

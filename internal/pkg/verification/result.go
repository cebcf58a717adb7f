package verification

import (
	"errors"

	"github.com/ManuelReschke/PixelProof/app/models"
)

var (
	// ErrPersistence wraps failures of the relational store
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidRequest is returned for submissions that fail validation
	ErrInvalidRequest = errors.New("invalid verification request")
)

// Result is the outcome of one VerifyImage run
type Result struct {
	ImageID             string                    `json:"image_id"`
	ImageType           string                    `json:"image_type"`
	VerificationStatus  models.VerificationStatus `json:"verification_status"`
	VerificationMethod  models.VerificationMethod `json:"verification_method"`
	AuthenticityScore   int                       `json:"authenticity_score"`
	RiskLevel           models.RiskLevel          `json:"risk_level,omitempty"`
	FlaggedReasons      []string                  `json:"flagged_reasons"`
	AdminReviewRequired bool                      `json:"admin_review_required"`
	MetadataExtracted   *models.ExtractedMetadata `json:"metadata_extracted,omitempty"`
	CameraInfo          *models.CameraInfo        `json:"camera_info,omitempty"`
	EditingSoftware     *models.EditingSignals    `json:"editing_software,omitempty"`
	SimilarityMatches   []models.SimilarityMatch  `json:"similarity_matches"`
	FileHash            string                    `json:"file_hash,omitempty"`
	PerceptualHash      string                    `json:"perceptual_hash,omitempty"`
	ProcessingErrors    []string                  `json:"processing_errors"`
	Warnings            []string                  `json:"warnings"`
}

func newResult(sub models.ImageSubmission) *Result {
	return &Result{
		ImageID:            sub.ImageID,
		ImageType:          sub.ImageType,
		VerificationMethod: models.VerificationMethodAutomated,
		FlaggedReasons:     []string{},
		SimilarityMatches:  []models.SimilarityMatch{},
		ProcessingErrors:   []string{},
		Warnings:           []string{},
	}
}

// FailedResult reports a run that could not start, for example because the store is unreachable
func FailedResult(sub models.ImageSubmission, cause error) *Result {
	res := newResult(sub)
	res.VerificationStatus = models.VerificationStatusFailed
	res.ProcessingErrors = append(res.ProcessingErrors, cause.Error())
	return res
}

// Failed reports whether the run ended in the failed state
func (r *Result) Failed() bool {
	return r.VerificationStatus == models.VerificationStatusFailed
}

// ItemResult is the per-entry detail of a queue batch
type ItemResult struct {
	QueueID            uint                      `json:"queue_id"`
	ImageID            string                    `json:"image_id"`
	ImageType          string                    `json:"image_type"`
	QueueStatus        models.QueueStatus        `json:"queue_status"`
	VerificationStatus models.VerificationStatus `json:"verification_status,omitempty"`
	AuthenticityScore  int                       `json:"authenticity_score"`
	Error              string                    `json:"error,omitempty"`
}

// BatchResult aggregates a ProcessQueue run
type BatchResult struct {
	Processed  int          `json:"processed"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
	Details    []ItemResult `json:"details"`
}

// Stats summarises the authenticity tables
type Stats struct {
	ByVerificationStatus map[string]int64 `json:"by_verification_status"`
	ByRiskLevel          map[string]int64 `json:"by_risk_level"`
	ByAdminDecision      map[string]int64 `json:"by_admin_decision"`
	ByQueueStatus        map[string]int64 `json:"by_queue_status"`
}

// Package verification runs the authenticity pipeline for uploaded images and owns
// every write to the authenticity tables.
package verification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/app/repository"
	"github.com/ManuelReschke/PixelProof/internal/pkg/imageprocessor"
	"github.com/ManuelReschke/PixelProof/internal/pkg/provenance"
	"github.com/ManuelReschke/PixelProof/internal/pkg/scoring"
	"github.com/ManuelReschke/PixelProof/internal/pkg/similarity"
	"github.com/ManuelReschke/PixelProof/internal/pkg/storage"
)

// StatusProcessing is published to the status cache while a run is in flight
const StatusProcessing = "processing"

// StatusCache receives status transitions. Implemented by cache.StatusCache.
type StatusCache interface {
	SetStatus(ctx context.Context, imageType, imageID, status string) error
}

// Option configures a Service
type Option func(*Service)

// WithStatusCache publishes status transitions to c
func WithStatusCache(c StatusCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithAnalyzer replaces the default provenance analyzer
func WithAnalyzer(a *provenance.Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// WithThresholds skips loading thresholds from the settings table
func WithThresholds(t scoring.Thresholds) Option {
	return func(s *Service) { s.thresholds = &t }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the verification orchestrator
type Service struct {
	repos      *repository.Repositories
	source     storage.Source
	extractor  *imageprocessor.Extractor
	analyzer   *provenance.Analyzer
	hasher     *imageprocessor.Hasher
	index      *similarity.Index
	scorer     *scoring.Scorer
	thresholds *scoring.Thresholds
	cache      StatusCache
	validate   *validator.Validate
	now        func() time.Time
}

// NewService wires the pipeline. Thresholds are read from the settings table once;
// invalid settings fall back to the defaults with a warning.
func NewService(ctx context.Context, repos *repository.Repositories, source storage.Source, opts ...Option) (*Service, error) {
	s := &Service{
		repos:     repos,
		source:    source,
		extractor: imageprocessor.NewExtractor(source),
		analyzer:  provenance.NewAnalyzer(),
		hasher:    imageprocessor.NewHasher(),
		validate:  validator.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.thresholds == nil {
		t, err := s.loadThresholds(ctx)
		if err != nil {
			return nil, err
		}
		s.thresholds = &t
	}

	s.scorer = scoring.NewScorer(*s.thresholds)
	s.index = similarity.NewIndex(repos.Authenticity, s.thresholds.Similarity)
	return s, nil
}

func (s *Service) loadThresholds(ctx context.Context) (scoring.Thresholds, error) {
	settings, err := s.repos.Setting.List(ctx)
	if err != nil {
		return scoring.Thresholds{}, fmt.Errorf("%w: load settings: %v", ErrPersistence, err)
	}
	t, err := scoring.ThresholdsFromSettings(settings)
	if err != nil {
		log.Warnf("[Verification] Using default thresholds where settings are invalid: %v", err)
	}
	return t, nil
}

// Thresholds returns the thresholds this service scores with
func (s *Service) Thresholds() scoring.Thresholds {
	return *s.thresholds
}

// decideStatus maps a score onto the automated status. The band between the
// auto-approve and suspicious thresholds is flagged.
func (s *Service) decideStatus(score int) models.VerificationStatus {
	t := s.thresholds
	v := float64(score)
	switch {
	case v >= t.SuspiciousScore:
		return models.VerificationStatusFlagged
	case v <= t.AutoApproveClean:
		return models.VerificationStatusVerified
	default:
		return models.VerificationStatusFlagged
	}
}

// VerifyImage runs the full pipeline for one submission and persists the outcome.
// Failures are reported through the result with status failed, never as an error.
func (s *Service) VerifyImage(ctx context.Context, sub models.ImageSubmission) *Result {
	res := newResult(sub)
	if err := s.validate.Struct(sub); err != nil {
		res.VerificationStatus = models.VerificationStatusFailed
		res.ProcessingErrors = append(res.ProcessingErrors, fmt.Errorf("%w: %v", ErrInvalidRequest, err).Error())
		return res
	}

	ref := sub.Ref()
	runID := uuid.NewString()
	s.publish(ctx, ref, StatusProcessing)

	obj, err := s.source.Open(ctx, sub.FilePath)
	if err != nil {
		return s.fail(ctx, sub, runID, res, fmt.Errorf("read %s: %w", sub.FilePath, err))
	}
	sum := sha256.Sum256(obj.Data)
	res.FileHash = hex.EncodeToString(sum[:])

	meta, err := s.extractor.ExtractObject(obj)
	if err != nil {
		return s.fail(ctx, sub, runID, res, fmt.Errorf("extract metadata: %w", err))
	}
	if meta.ExtractionWarning != "" {
		res.Warnings = append(res.Warnings, meta.ExtractionWarning)
	}

	camera := s.analyzer.AnalyzeCamera(meta)
	editing := s.analyzer.DetectEditingSoftware(meta)

	fp, err := s.hasher.HashBytes(obj.Data)
	if err != nil {
		log.Warnf("[Verification] Perceptual hash of %s failed: %v", ref, err)
		res.Warnings = append(res.Warnings, "Perceptual hashing failed: "+err.Error())
	}
	res.PerceptualHash = fp.String()

	matches, err := s.index.FindSimilar(ctx, fp, ref)
	if err != nil {
		log.Warnf("[Verification] Similarity search for %s failed: %v", ref, err)
		res.Warnings = append(res.Warnings, "Similarity search failed: "+err.Error())
		matches = nil
	}

	score, reasons := s.scorer.Score(meta, camera, editing, matches)
	risk := s.scorer.RiskLevel(score)
	status := s.decideStatus(score)
	method := models.VerificationMethodAutomated

	existing, err := s.repos.Authenticity.GetByImage(ctx, ref)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return s.fail(ctx, sub, runID, res, fmt.Errorf("%w: load record: %v", ErrPersistence, err))
	}
	if existing != nil && existing.IsManualOverride() {
		status = existing.VerificationStatus
		method = models.VerificationMethodManualOverride
	}
	reviewRequired := status == models.VerificationStatusFlagged && method == models.VerificationMethodAutomated

	res.AuthenticityScore = score
	res.RiskLevel = risk
	res.FlaggedReasons = append(res.FlaggedReasons, reasons...)
	res.MetadataExtracted = &meta
	res.CameraInfo = &camera
	res.EditingSoftware = &editing
	res.SimilarityMatches = append(res.SimilarityMatches, matches...)

	record := &models.AuthenticityMetadata{
		ImageID:            sub.ImageID,
		ImageType:          sub.ImageType,
		FilePath:           sub.FilePath,
		OriginalFilename:   filepath.Base(obj.Name),
		FileSize:           meta.FileSize,
		MimeType:           meta.MimeType,
		ImageHash:          res.FileHash,
		PerceptualHash:     res.PerceptualHash,
		MetadataExtracted:  datatypes.NewJSONType(meta),
		CameraInfo:         datatypes.NewJSONType(camera),
		EditingSoftware:    datatypes.NewJSONType(editing),
		AuthenticityScore:  score,
		RiskLevel:          risk,
		VerificationStatus: status,
		VerificationMethod: method,
		SimilarityMatches:  datatypes.NewJSONSlice(res.SimilarityMatches),
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Authenticity.Upsert(ctx, record); err != nil {
			return fmt.Errorf("upsert authenticity record: %w", err)
		}
		if reviewRequired {
			if err := tx.Review.Upsert(ctx, &models.AdminReviewItem{
				ImageID:           sub.ImageID,
				ImageType:         sub.ImageType,
				UserID:            sub.UploaderID,
				TutorialID:        sub.TutorialID,
				AuthenticityScore: score,
				RiskLevel:         risk,
				FlaggedReasons:    datatypes.NewJSONSlice(res.FlaggedReasons),
				FlaggedAt:         s.now(),
			}); err != nil {
				return fmt.Errorf("upsert review item: %w", err)
			}
		}
		return tx.Audit.Append(ctx, completedEntry(ref, status, map[string]interface{}{
			"run_id":              runID,
			"authenticity_score":  score,
			"risk_level":          risk,
			"verification_method": method,
			"flagged_reasons":     res.FlaggedReasons,
			"similarity_matches":  len(res.SimilarityMatches),
		}))
	})
	if err != nil {
		return s.fail(ctx, sub, runID, res, fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	res.VerificationStatus = status
	res.VerificationMethod = method
	res.AdminReviewRequired = reviewRequired
	s.publish(ctx, ref, string(status))

	log.Infof("[Verification] %s scored %d (%s), status %s", ref, score, risk, status)
	return res
}

// fail marks the run as failed and records it on a best-effort basis. A store that
// is down cannot take the failed record either, so those errors are only logged.
func (s *Service) fail(ctx context.Context, sub models.ImageSubmission, runID string, res *Result, cause error) *Result {
	ref := sub.Ref()
	log.Errorf("[Verification] %s failed: %v", ref, cause)

	res.VerificationStatus = models.VerificationStatusFailed
	res.ProcessingErrors = append(res.ProcessingErrors, cause.Error())

	record := &models.AuthenticityMetadata{
		ImageID:            sub.ImageID,
		ImageType:          sub.ImageType,
		FilePath:           sub.FilePath,
		OriginalFilename:   filepath.Base(sub.FilePath),
		ImageHash:          res.FileHash,
		VerificationMethod: models.VerificationMethodAutomated,
	}
	if err := s.repos.Authenticity.UpsertFailed(ctx, record); err != nil {
		log.Errorf("[Verification] Recording failure of %s: %v", ref, err)
	}

	entry := completedEntry(ref, models.VerificationStatusFailed, map[string]interface{}{
		"run_id":            runID,
		"processing_errors": res.ProcessingErrors,
	})
	if err := s.repos.Audit.Append(ctx, entry); err != nil {
		log.Errorf("[Verification] Auditing failure of %s: %v", ref, err)
	}

	s.publish(ctx, ref, string(models.VerificationStatusFailed))
	return res
}

func completedEntry(ref models.ImageRef, status models.VerificationStatus, details map[string]interface{}) *models.AuditLogEntry {
	newStatus := string(status)
	return &models.AuditLogEntry{
		ImageID:         ref.ImageID,
		ImageType:       ref.ImageType,
		Action:          models.AuditActionVerificationCompleted,
		NewStatus:       &newStatus,
		PerformedByType: models.PerformerSystem,
		Details:         models.NewJSON(details),
	}
}

func (s *Service) publish(ctx context.Context, ref models.ImageRef, status string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetStatus(ctx, ref.ImageType, ref.ImageID, status); err != nil {
		log.Warnf("[Verification] Status cache update for %s failed: %v", ref, err)
	}
}

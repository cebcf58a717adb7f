package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PixelProof/app/models"
)

var canon = models.CameraInfo{Make: "Canon", Model: "EOS R6"}

// plainMeta has sane dimensions and compression so only the rules under test fire
func plainMeta() models.ExtractedMetadata {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.ExtractedMetadata{
		FileSize:     900_000,
		Width:        1200,
		Height:       800,
		CreatedTime:  now,
		ModifiedTime: now,
	}
}

func detection(name string, sev models.SeverityClass) models.SoftwareDetection {
	return models.SoftwareDetection{Name: name, Signature: name, Severity: sev, Confidence: models.ConfidenceHigh}
}

func TestScoreOnlyMissingCamera(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	score, reasons := s.Score(plainMeta(), models.CameraInfo{}, models.EditingSignals{}, nil)
	assert.Equal(t, 20, score)
	assert.Equal(t, []string{"No camera information found"}, reasons)
	assert.Equal(t, models.RiskLevelClean, s.RiskLevel(score))
}

func TestScorePhotoshopAndNearIdenticalMatch(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	editing := models.EditingSignals{DetectedSoftware: []models.SoftwareDetection{
		detection("Adobe Photoshop", models.SeverityProfessional),
	}}
	matches := []models.SimilarityMatch{{ImageID: "9", ImageType: "tutorial_step", SimilarityScore: 0.97}}

	score, reasons := s.Score(plainMeta(), canon, editing, matches)
	assert.GreaterOrEqual(t, score, 65)
	assert.Equal(t, 65, score)
	assert.Contains(t, reasons, "Professional editing software detected: Adobe Photoshop")
	assert.Contains(t, reasons, "Near-identical image found (similarity: 97.00%)")
	assert.Equal(t, models.RiskLevelSuspicious, s.RiskLevel(score))
}

func TestScoreTwoEditingSignatures(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	editing := models.EditingSignals{DetectedSoftware: []models.SoftwareDetection{
		detection("Adobe Photoshop", models.SeverityProfessional),
		detection("PicsArt", models.SeverityMobile),
	}}

	score, reasons := s.Score(plainMeta(), canon, editing, nil)
	assert.Equal(t, 15+25+15, score)
	assert.Equal(t, []string{
		"Professional editing software detected: Adobe Photoshop",
		"Mobile editing app detected: PicsArt",
		"Multiple editing software signatures found",
	}, reasons)
}

func TestScoreSimilarityBands(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	tests := []struct {
		name   string
		scores []float64
		want   int
		reason string
	}{
		{name: "no matches", scores: nil, want: 0},
		{name: "very similar", scores: []float64{0.86, 0.9}, want: 30, reason: "Very similar image found (similarity: 90.00%)"},
		{name: "near identical wins", scores: []float64{0.9, 0.95}, want: 50, reason: "Near-identical image found (similarity: 95.00%)"},
		{name: "below band", scores: []float64{0.8}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var matches []models.SimilarityMatch
			for _, sc := range tt.scores {
				matches = append(matches, models.SimilarityMatch{SimilarityScore: sc})
			}
			score, reasons := s.Score(plainMeta(), canon, models.EditingSignals{}, matches)
			assert.Equal(t, tt.want, score)
			if tt.reason != "" {
				assert.Equal(t, []string{tt.reason}, reasons)
			} else {
				assert.Empty(t, reasons)
			}
		})
	}
}

func TestScoreTimestampMismatch(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	meta := plainMeta()
	meta.ModifiedTime = meta.CreatedTime.Add(2 * time.Hour)

	withOriginal := canon
	withOriginal.DateTimeOriginal = "2024:03:01 12:00:00"

	score, reasons := s.Score(meta, withOriginal, models.EditingSignals{}, nil)
	assert.Equal(t, 10, score)
	assert.Equal(t, []string{"Creation and modification timestamps mismatch significantly"}, reasons)

	// without a capture timestamp the drift is not scored
	score, _ = s.Score(meta, canon, models.EditingSignals{}, nil)
	assert.Equal(t, 0, score)

	meta.ModifiedTime = meta.CreatedTime.Add(-30 * time.Minute)
	score, _ = s.Score(meta, withOriginal, models.EditingSignals{}, nil)
	assert.Equal(t, 0, score)
}

func TestScoreDimensionRules(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	tests := []struct {
		name   string
		width  int
		height int
		size   int64
		want   int
	}{
		{name: "wide panorama", width: 4000, height: 1000, size: 4_000_000, want: 5},
		{name: "tall strip", width: 200, height: 1000, size: 200_000, want: 5},
		{name: "full hd screenshot", width: 1920, height: 1080, size: 2_000_000, want: 10},
		{name: "hd screenshot", width: 1280, height: 720, size: 1_000_000, want: 10},
		{name: "heavily compressed", width: 1000, height: 1000, size: 100_000, want: 8},
		{name: "unknown dimensions", width: 0, height: 0, size: 100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := plainMeta()
			meta.Width, meta.Height, meta.FileSize = tt.width, tt.height, tt.size
			score, _ := s.Score(meta, canon, models.EditingSignals{}, nil)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestScoreIsClamped(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	meta := plainMeta()
	meta.Width, meta.Height, meta.FileSize = 1920, 1080, 1000
	meta.ModifiedTime = meta.CreatedTime.Add(48 * time.Hour)
	editing := models.EditingSignals{DetectedSoftware: []models.SoftwareDetection{
		detection("PicsArt", models.SeverityMobile),
		detection("Facetune", models.SeverityMobile),
		detection("Adobe Photoshop", models.SeverityProfessional),
	}}
	matches := []models.SimilarityMatch{{SimilarityScore: 1}}

	score, reasons := s.Score(meta, models.CameraInfo{DateTimeOriginal: "x"}, editing, matches)
	assert.Equal(t, MaxScore, score)
	assert.Len(t, reasons, 9)
	assert.Equal(t, models.RiskLevelHighlySuspicious, s.RiskLevel(score))
}

func TestEvaluateNamesRules(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	contributions := s.Evaluate(Signals{Metadata: plainMeta()})
	require.Len(t, contributions, 1)
	assert.Equal(t, "missing_camera_info", contributions[0].Rule)
	assert.Equal(t, WeightMissingCamera, contributions[0].Weight)
}

func TestRiskLevelMonotonic(t *testing.T) {
	thresholds := []Thresholds{
		DefaultThresholds(),
		{SuspiciousScore: 40, HighlySuspiciousScore: 40, Similarity: 0.9, AutoApproveClean: 10},
		{SuspiciousScore: 0, HighlySuspiciousScore: 100, Similarity: 0.9, AutoApproveClean: 0},
	}

	for _, th := range thresholds {
		prev := -1
		for score := 0; score <= MaxScore; score++ {
			rank := RiskLevelFor(score, th).Rank()
			assert.GreaterOrEqual(t, rank, prev, "score %d with %+v", score, th)
			prev = rank
		}
	}

	d := DefaultThresholds()
	assert.Equal(t, models.RiskLevelClean, RiskLevelFor(59, d))
	assert.Equal(t, models.RiskLevelSuspicious, RiskLevelFor(60, d))
	assert.Equal(t, models.RiskLevelSuspicious, RiskLevelFor(79, d))
	assert.Equal(t, models.RiskLevelHighlySuspicious, RiskLevelFor(80, d))
}

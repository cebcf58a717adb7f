// Package scoring turns extracted signals into a bounded 0-100 authenticity score.
// Higher scores mean more suspicious. Every rule contributes independently and
// explains itself with a reason string.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/ManuelReschke/PixelProof/app/models"
)

// MaxScore is the upper bound of the score
const MaxScore = 100

// Rule weights
const (
	WeightMissingCamera       = 20
	WeightProfessionalEditing = 15
	WeightMobileEditing       = 25
	WeightMultipleEdits       = 15
	WeightNearIdentical       = 50
	WeightVerySimilar         = 30
	WeightTimestampMismatch   = 10
	WeightUnusualAspectRatio  = 5
	WeightScreenshot          = 10
	WeightLowCompression      = 8
)

// Similarity bands for duplicate matches
const (
	NearIdenticalSimilarity = 0.95
	VerySimilarSimilarity   = 0.85
)

const (
	maxTimestampDrift   = time.Hour
	maxAspectRatio      = 3.0
	minAspectRatio      = 0.3
	minBytesPerPixel    = 0.5
	reasonMissingCamera = "No camera information found"
	reasonMultipleEdits = "Multiple editing software signatures found"
	reasonTimestamp     = "Creation and modification timestamps mismatch significantly"
	reasonAspectRatio   = "Unusual aspect ratio detected"
	reasonScreenshot    = "Screenshot dimensions detected"
	reasonCompression   = "Unusually low file size for image dimensions"
)

var screenshotSizes = [][2]int{
	{1920, 1080},
	{1366, 768},
	{1280, 720},
}

// Contribution is the outcome of one triggered rule
type Contribution struct {
	Rule   string `json:"rule"`
	Weight int    `json:"weight"`
	Reason string `json:"reason"`
}

// Signals is everything the rules look at
type Signals struct {
	Metadata models.ExtractedMetadata
	Camera   models.CameraInfo
	Editing  models.EditingSignals
	Matches  []models.SimilarityMatch
}

type rule struct {
	name  string
	apply func(Signals) []Contribution
}

// Scorer is a deterministic additive model over a fixed rule set
type Scorer struct {
	thresholds Thresholds
	rules      []rule
}

// NewScorer creates a scorer bound to thresholds
func NewScorer(thresholds Thresholds) *Scorer {
	return &Scorer{
		thresholds: thresholds,
		rules: []rule{
			{name: "missing_camera_info", apply: missingCamera},
			{name: "editing_software", apply: editingSoftware},
			{name: "multiple_edits", apply: multipleEdits},
			{name: "similarity", apply: similarity},
			{name: "timestamp_mismatch", apply: timestampMismatch},
			{name: "unusual_aspect_ratio", apply: aspectRatio},
			{name: "screenshot_dimensions", apply: screenshot},
			{name: "low_compression", apply: compression},
		},
	}
}

// Thresholds returns the thresholds the scorer was built with
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Evaluate returns the contribution of every triggered rule in rule order
func (s *Scorer) Evaluate(sig Signals) []Contribution {
	var out []Contribution
	for _, r := range s.rules {
		for _, c := range r.apply(sig) {
			c.Rule = r.name
			out = append(out, c)
		}
	}
	return out
}

// Score returns the clamped score and the reasons of all triggered rules
func (s *Scorer) Score(meta models.ExtractedMetadata, camera models.CameraInfo, editing models.EditingSignals, matches []models.SimilarityMatch) (int, []string) {
	contributions := s.Evaluate(Signals{Metadata: meta, Camera: camera, Editing: editing, Matches: matches})

	score := 0
	reasons := make([]string, 0, len(contributions))
	for _, c := range contributions {
		score += c.Weight
		reasons = append(reasons, c.Reason)
	}
	return clamp(score), reasons
}

// RiskLevel buckets score with the scorer's thresholds
func (s *Scorer) RiskLevel(score int) models.RiskLevel {
	return RiskLevelFor(score, s.thresholds)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

func missingCamera(sig Signals) []Contribution {
	if sig.Camera.HasCamera() {
		return nil
	}
	return []Contribution{{Weight: WeightMissingCamera, Reason: reasonMissingCamera}}
}

func editingSoftware(sig Signals) []Contribution {
	var out []Contribution
	for _, d := range sig.Editing.DetectedSoftware {
		switch d.Severity {
		case models.SeverityProfessional:
			out = append(out, Contribution{
				Weight: WeightProfessionalEditing,
				Reason: "Professional editing software detected: " + d.Name,
			})
		case models.SeverityMobile:
			out = append(out, Contribution{
				Weight: WeightMobileEditing,
				Reason: "Mobile editing app detected: " + d.Name,
			})
		}
	}
	return out
}

func multipleEdits(sig Signals) []Contribution {
	if !sig.Editing.MultipleEdits() {
		return nil
	}
	return []Contribution{{Weight: WeightMultipleEdits, Reason: reasonMultipleEdits}}
}

func similarity(sig Signals) []Contribution {
	if len(sig.Matches) == 0 {
		return nil
	}
	best := sig.Matches[0].SimilarityScore
	for _, m := range sig.Matches[1:] {
		best = math.Max(best, m.SimilarityScore)
	}

	switch {
	case best >= NearIdenticalSimilarity:
		return []Contribution{{
			Weight: WeightNearIdentical,
			Reason: fmt.Sprintf("Near-identical image found (similarity: %.2f%%)", best*100),
		}}
	case best >= VerySimilarSimilarity:
		return []Contribution{{
			Weight: WeightVerySimilar,
			Reason: fmt.Sprintf("Very similar image found (similarity: %.2f%%)", best*100),
		}}
	}
	return nil
}

func timestampMismatch(sig Signals) []Contribution {
	meta := sig.Metadata
	if meta.CreatedTime.IsZero() || meta.ModifiedTime.IsZero() || sig.Camera.DateTimeOriginal == "" {
		return nil
	}
	drift := meta.ModifiedTime.Sub(meta.CreatedTime)
	if drift < 0 {
		drift = -drift
	}
	if drift <= maxTimestampDrift {
		return nil
	}
	return []Contribution{{Weight: WeightTimestampMismatch, Reason: reasonTimestamp}}
}

func aspectRatio(sig Signals) []Contribution {
	w, h := sig.Metadata.Width, sig.Metadata.Height
	if w <= 0 || h <= 0 {
		return nil
	}
	ratio := float64(w) / float64(h)
	if ratio > maxAspectRatio || ratio < minAspectRatio {
		return []Contribution{{Weight: WeightUnusualAspectRatio, Reason: reasonAspectRatio}}
	}
	return nil
}

func screenshot(sig Signals) []Contribution {
	for _, size := range screenshotSizes {
		if sig.Metadata.Width == size[0] && sig.Metadata.Height == size[1] {
			return []Contribution{{Weight: WeightScreenshot, Reason: reasonScreenshot}}
		}
	}
	return nil
}

func compression(sig Signals) []Contribution {
	pixels := sig.Metadata.Pixels()
	if pixels == 0 || sig.Metadata.FileSize <= 0 {
		return nil
	}
	if float64(sig.Metadata.FileSize)/float64(pixels) < minBytesPerPixel {
		return []Contribution{{Weight: WeightLowCompression, Reason: reasonCompression}}
	}
	return nil
}

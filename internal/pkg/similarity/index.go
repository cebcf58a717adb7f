// Package similarity finds previously verified images whose perceptual hash is close
// to a new one. The scan is linear over every stored fingerprint.
package similarity

import (
	"context"
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/internal/pkg/imageprocessor"
)

// FingerprintStore lists stored fingerprints, skipping the excluded image
type FingerprintStore interface {
	ListFingerprints(ctx context.Context, exclude models.ImageRef) ([]models.FingerprintRecord, error)
}

// Index compares fingerprints against a FingerprintStore
type Index struct {
	store     FingerprintStore
	threshold float64
}

// NewIndex creates an index returning matches with similarity >= threshold
func NewIndex(store FingerprintStore, threshold float64) *Index {
	return &Index{store: store, threshold: threshold}
}

// Threshold returns the minimum similarity of a match
func (i *Index) Threshold() float64 {
	return i.threshold
}

// FindSimilar returns stored images similar to fp, most similar first. Ties go to the
// newer record, then to the lower image id. An empty fingerprint has no matches.
func (i *Index) FindSimilar(ctx context.Context, fp imageprocessor.Fingerprint, exclude models.ImageRef) ([]models.SimilarityMatch, error) {
	if fp.IsEmpty() {
		return nil, nil
	}

	records, err := i.store.ListFingerprints(ctx, exclude)
	if err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}

	type candidate struct {
		match   models.SimilarityMatch
		created int64
	}
	var found []candidate

	for _, rec := range records {
		if rec.ImageID == exclude.ImageID && rec.ImageType == exclude.ImageType {
			continue
		}
		stored, err := imageprocessor.ParseFingerprint(rec.PerceptualHash)
		if err != nil || stored.IsEmpty() {
			log.Warnf("[Similarity] Skipping corrupt fingerprint of %s:%s: %v", rec.ImageType, rec.ImageID, err)
			continue
		}
		if stored.Bits() != fp.Bits() {
			log.Warnf("[Similarity] Skipping %s:%s: fingerprint has %d bits, want %d", rec.ImageType, rec.ImageID, stored.Bits(), fp.Bits())
			continue
		}

		sim, err := fp.Similarity(stored)
		if err != nil {
			log.Warnf("[Similarity] Comparing with %s:%s failed: %v", rec.ImageType, rec.ImageID, err)
			continue
		}
		if sim < i.threshold {
			continue
		}

		created := rec.CreatedAt
		found = append(found, candidate{
			match: models.SimilarityMatch{
				ImageID:         rec.ImageID,
				ImageType:       rec.ImageType,
				SimilarityScore: sim,
				FilePath:        rec.FilePath,
				CreatedAt:       &created,
			},
			created: created.UnixNano(),
		})
	}

	sort.SliceStable(found, func(a, b int) bool {
		if found[a].match.SimilarityScore != found[b].match.SimilarityScore {
			return found[a].match.SimilarityScore > found[b].match.SimilarityScore
		}
		if found[a].created != found[b].created {
			return found[a].created > found[b].created
		}
		return found[a].match.ImageID < found[b].match.ImageID
	})

	matches := make([]models.SimilarityMatch, 0, len(found))
	for _, c := range found {
		matches = append(matches, c.match)
	}
	return matches, nil
}

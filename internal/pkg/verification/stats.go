package verification

import (
	"context"
	"fmt"
)

// Stats counts authenticity records, review items and queue entries per state
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.ByVerificationStatus, err = s.repos.Authenticity.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("%w: count by status: %v", ErrPersistence, err)
	}
	if stats.ByRiskLevel, err = s.repos.Authenticity.CountByRiskLevel(ctx); err != nil {
		return nil, fmt.Errorf("%w: count by risk level: %v", ErrPersistence, err)
	}
	if stats.ByAdminDecision, err = s.repos.Review.CountByDecision(ctx); err != nil {
		return nil, fmt.Errorf("%w: count by decision: %v", ErrPersistence, err)
	}
	if stats.ByQueueStatus, err = s.repos.Queue.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("%w: count queue: %v", ErrPersistence, err)
	}
	return &stats, nil
}

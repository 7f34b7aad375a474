package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type cleanupService struct {
	codeRepo  ports.CodeRepository
	retention time.Duration
}

// NewCleanupService removes one-time codes that expired or were used more than
// retention ago.
func NewCleanupService(codeRepo ports.CodeRepository, retention time.Duration) ports.CleanupService {
	return &cleanupService{
		codeRepo:  codeRepo,
		retention: retention,
	}
}

func (s *cleanupService) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.codeRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge one-time codes: %w", err)
	}
	utils.Logger.WithField("removed", removed).Info("Purged stale one-time codes")
	return removed, nil
}

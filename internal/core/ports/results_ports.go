package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
)

type ResultsRepository interface {
	ContestantTotals(ctx context.Context, windowID uuid.UUID) ([]domain.ContestantVoteStat, error)
}

type ResultsService interface {
	GetDashboard(ctx context.Context, windowID uuid.UUID) (*domain.DashboardStats, error)
}

type CleanupService interface {
	PurgeExpiredCodes(ctx context.Context) (int64, error)
}

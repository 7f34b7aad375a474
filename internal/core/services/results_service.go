package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

type resultsService struct {
	windowRepo  ports.WindowRepository
	resultsRepo ports.ResultsRepository
}

func NewResultsService(windowRepo ports.WindowRepository, resultsRepo ports.ResultsRepository) ports.ResultsService {
	return &resultsService{
		windowRepo:  windowRepo,
		resultsRepo: resultsRepo,
	}
}

// GetDashboard lists per-contestant totals for a window, highest first. Contestants
// without votes in the window are not listed.
func (s *resultsService) GetDashboard(ctx context.Context, windowID uuid.UUID) (*domain.DashboardStats, error) {
	window, err := s.windowRepo.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}

	stats, err := s.resultsRepo.ContestantTotals(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []domain.ContestantVoteStat{}
	}

	return &domain.DashboardStats{
		VotingWindowName: window.Name,
		Stats:            stats,
	}, nil
}

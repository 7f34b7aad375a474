package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 500
)

type windowService struct {
	repo           ports.WindowRepository
	contestantRepo ports.ContestantRepository
}

func NewWindowService(repo ports.WindowRepository, contestantRepo ports.ContestantRepository) ports.WindowService {
	return &windowService{
		repo:           repo,
		contestantRepo: contestantRepo,
	}
}

func (s *windowService) Create(ctx context.Context, input ports.CreateWindowInput) (*domain.VotingWindow, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if input.MaxVotesPerUser <= 0 || input.MaxVotesPerUser > domain.MaxCount {
		return nil, fmt.Errorf("%w: max votes per user must be between 1 and %d", domain.ErrValidation, domain.MaxCount)
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
	}

	contestantIDs := uniqueIDs(input.ContestantIDs)
	if len(contestantIDs) > 0 {
		found, err := s.contestantRepo.CountExisting(ctx, contestantIDs)
		if err != nil {
			return nil, err
		}
		if found != len(contestantIDs) {
			return nil, fmt.Errorf("%w: unknown contestant id in contestant_ids", domain.ErrValidation)
		}
	}

	window := &domain.VotingWindow{
		ID:              uuid.New(),
		Name:            name,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		MaxVotesPerUser: input.MaxVotesPerUser,
		ContestantIDs:   contestantIDs,
		CreatedAt:       time.Now(),
	}

	if err := s.repo.Save(ctx, window); err != nil {
		return nil, err
	}

	utils.Logger.WithField("window_id", window.ID).Infof("Voting window %q created", window.Name)
	return window, nil
}

func (s *windowService) List(ctx context.Context, page ports.PageInput) ([]*domain.VotingWindow, error) {
	limit, offset, err := pageBounds(page)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *windowService) Activate(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error) {
	window, err := s.repo.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	utils.Logger.WithField("window_id", id).Info("Voting window activated")
	return window, nil
}

func (s *windowService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error) {
	window, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}
	utils.Logger.WithField("window_id", id).Info("Voting window deactivated")
	return window, nil
}

// GetActiveWindow returns nil without error when no window is open at now.
func (s *windowService) GetActiveWindow(ctx context.Context, now time.Time) (*domain.VotingWindow, error) {
	return s.repo.GetOpen(ctx, now)
}

func pageBounds(page ports.PageInput) (limit, offset int, err error) {
	if page.Skip < 0 {
		return 0, 0, fmt.Errorf("%w: skip must not be negative", domain.ErrValidation)
	}
	limit = page.Limit
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 0 || limit > maxPageLimit {
		return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxPageLimit)
	}
	return limit, page.Skip, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type voteService struct {
	windowRepo     ports.WindowRepository
	contestantRepo ports.ContestantRepository
	voteRepo       ports.VoteRepository
	now            func() time.Time
}

func NewVoteService(windowRepo ports.WindowRepository, contestantRepo ports.ContestantRepository, voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		windowRepo:     windowRepo,
		contestantRepo: contestantRepo,
		voteRepo:       voteRepo,
		now:            time.Now,
	}
}

func (s *voteService) GetUserTotal(ctx context.Context, userID, windowID uuid.UUID) (int, error) {
	return s.voteRepo.UserTotal(ctx, userID, windowID)
}

func (s *voteService) SubmitVotes(ctx context.Context, userID uuid.UUID, allocations []domain.Allocation) error {
	now := s.now()
	window, err := s.windowRepo.GetOpen(ctx, now)
	if err != nil {
		return err
	}
	if window == nil || !window.IsOpenAt(now) {
		return domain.ErrWindowClosed
	}

	accepted, requested := positiveAllocations(allocations)
	if requested <= 0 {
		return domain.ErrEmptySubmission
	}

	for _, a := range accepted {
		if !window.HasContestant(a.ContestantID) {
			return fmt.Errorf("%w: contestant %s is not part of voting window %q", domain.ErrValidation, a.ContestantID, window.Name)
		}
	}

	existing, err := s.voteRepo.UserTotal(ctx, userID, window.ID)
	if err != nil {
		return err
	}
	if requested > window.MaxVotesPerUser-existing {
		return fmt.Errorf("%w: %d already cast, %d requested, limit is %d", domain.ErrQuotaExceeded, existing, requested, window.MaxVotesPerUser)
	}

	// The read above is advisory; Append re-checks the ceiling atomically so two
	// racing submissions cannot both pass.
	total, err := s.voteRepo.Append(ctx, userID, window.ID, window.MaxVotesPerUser, accepted)
	if err != nil {
		return err
	}

	utils.Logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"window_id": window.ID,
		"requested": requested,
		"total":     total,
	}).Info("Votes submitted")
	return nil
}

func (s *voteService) VotingState(ctx context.Context, userID uuid.UUID) (*ports.VotingState, error) {
	now := s.now()
	window, err := s.windowRepo.GetOpen(ctx, now)
	if err != nil {
		return nil, err
	}
	if window == nil || !window.IsOpenAt(now) {
		return nil, domain.ErrWindowClosed
	}

	contestants, err := s.contestantRepo.ListByWindow(ctx, window.ID)
	if err != nil {
		return nil, err
	}

	total, err := s.voteRepo.UserTotal(ctx, userID, window.ID)
	if err != nil {
		return nil, err
	}

	return &ports.VotingState{
		VotingWindow:   window,
		Contestants:    contestants,
		UserTotalVotes: total,
	}, nil
}

func (s *voteService) History(ctx context.Context, userID uuid.UUID) ([]domain.VoteHistoryEntry, error) {
	return s.voteRepo.History(ctx, userID)
}

// positiveAllocations drops entries with a count of zero or less, merges repeated
// contestants and orders the result by contestant id. Sums saturate at
// domain.MaxCount.
func positiveAllocations(allocations []domain.Allocation) ([]domain.Allocation, int) {
	merged := make(map[uuid.UUID]int, len(allocations))
	total := 0
	for _, a := range allocations {
		if a.Count <= 0 {
			continue
		}
		merged[a.ContestantID] = addCapped(merged[a.ContestantID], a.Count)
		total = addCapped(total, a.Count)
	}

	out := make([]domain.Allocation, 0, len(merged))
	for id, count := range merged {
		out = append(out, domain.Allocation{ContestantID: id, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ContestantID[:], out[j].ContestantID[:]) < 0
	})
	return out, total
}

func addCapped(a, b int) int {
	if a >= domain.MaxCount || b >= domain.MaxCount-a {
		return domain.MaxCount
	}
	return a + b
}

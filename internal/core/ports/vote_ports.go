package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
)

type VoteRepository interface {
	UserTotal(ctx context.Context, userID, windowID uuid.UUID) (int, error)
	// Append stores one row per allocation and raises the user's tally in the same
	// transaction. It fails with domain.ErrQuotaExceeded, storing nothing, when the
	// tally would pass maxVotes.
	Append(ctx context.Context, userID, windowID uuid.UUID, maxVotes int, allocations []domain.Allocation) (int, error)
	History(ctx context.Context, userID uuid.UUID) ([]domain.VoteHistoryEntry, error)
}

type VotingState struct {
	VotingWindow   *domain.VotingWindow `json:"voting_window"`
	Contestants    []*domain.Contestant `json:"contestants"`
	UserTotalVotes int                  `json:"user_total_votes"`
}

type VoteService interface {
	GetUserTotal(ctx context.Context, userID, windowID uuid.UUID) (int, error)
	SubmitVotes(ctx context.Context, userID uuid.UUID, allocations []domain.Allocation) error
	VotingState(ctx context.Context, userID uuid.UUID) (*VotingState, error)
	History(ctx context.Context, userID uuid.UUID) ([]domain.VoteHistoryEntry, error)
}

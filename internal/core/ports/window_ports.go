package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
)

type WindowRepository interface {
	Save(ctx context.Context, window *domain.VotingWindow) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error)
	List(ctx context.Context, limit, offset int) ([]*domain.VotingWindow, error)
	// Activate sets the target active and every other window inactive as one unit.
	Activate(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error)
	// GetOpen returns the active window whose bounds contain now, or nil.
	GetOpen(ctx context.Context, now time.Time) (*domain.VotingWindow, error)
}

type CreateWindowInput struct {
	Name            string
	StartTime       time.Time
	EndTime         time.Time
	MaxVotesPerUser int
	ContestantIDs   []uuid.UUID
}

type PageInput struct {
	Skip  int
	Limit int
}

type WindowService interface {
	Create(ctx context.Context, input CreateWindowInput) (*domain.VotingWindow, error)
	List(ctx context.Context, page PageInput) ([]*domain.VotingWindow, error)
	Activate(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error)
	GetActiveWindow(ctx context.Context, now time.Time) (*domain.VotingWindow, error)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type VotingWindow struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	MaxVotesPerUser int         `json:"max_votes_per_user"`
	IsActive        bool        `json:"is_active"`
	ContestantIDs   []uuid.UUID `json:"contestant_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty"`
}

// IsOpenAt reports whether votes may be cast at now. The active flag alone is not
// enough: a window can be activated ahead of its start time.
func (w *VotingWindow) IsOpenAt(now time.Time) bool {
	return w.IsActive && !now.Before(w.StartTime) && !now.After(w.EndTime)
}

func (w *VotingWindow) HasContestant(id uuid.UUID) bool {
	for _, c := range w.ContestantIDs {
		if c == id {
			return true
		}
	}
	return false
}

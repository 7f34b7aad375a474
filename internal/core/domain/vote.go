package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ContestantID   uuid.UUID `json:"contestant_id"`
	VotingWindowID uuid.UUID `json:"voting_window_id"`
	VoteCount      int       `json:"vote_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// MaxCount bounds vote counts, quotas and ages to what an INTEGER column holds.
const MaxCount = math.MaxInt32

// Allocation is one (contestant, count) entry of a vote submission.
type Allocation struct {
	ContestantID uuid.UUID
	Count        int
}

type ContestantVoteStat struct {
	ContestantID   uuid.UUID `json:"contestant_id"`
	ContestantName string    `json:"contestant_name"`
	TotalVotes     int64     `json:"total_votes"`
}

type DashboardStats struct {
	VotingWindowName string               `json:"voting_window_name"`
	Stats            []ContestantVoteStat `json:"stats"`
}

type VoteHistoryEntry struct {
	VotingWindowName  string    `json:"voting_window_name"`
	VotingWindowStart time.Time `json:"-"`
	VotingWindowEnd   time.Time `json:"-"`
	ContestantName    string    `json:"contestant_name"`
	VoteCount         int       `json:"vote_count"`
	VotedAt           time.Time `json:"voted_at"`
}

const historyDateLayout = "January 02, 2006"

// DateRange renders the window bounds the way the history view shows them.
func (e VoteHistoryEntry) DateRange() string {
	return e.VotingWindowStart.Format(historyDateLayout) + " - " + e.VotingWindowEnd.Format(historyDateLayout)
}

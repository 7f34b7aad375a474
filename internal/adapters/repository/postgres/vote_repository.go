package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) UserTotal(ctx context.Context, userID, windowID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(vote_count), 0)
		FROM votes
		WHERE user_id = $1 AND voting_window_id = $2
	`
	var total int
	if err := r.db.QueryRowContext(ctx, query, userID, windowID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum user votes: %w", err)
	}
	return total, nil
}

func (r *voteRepository) Append(ctx context.Context, userID, windowID uuid.UUID, maxVotes int, allocations []domain.Allocation) (int, error) {
	requested := 0
	for _, a := range allocations {
		if a.Count > maxVotes-requested {
			return 0, fmt.Errorf("%w: submission exceeds the limit of %d", domain.ErrQuotaExceeded, maxVotes)
		}
		requested += a.Count
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The conflict update holds the tally row lock until commit, so concurrent
	// submissions by the same user are checked against each other's totals.
	queryTally := `
		INSERT INTO vote_tallies (user_id, voting_window_id, total)
		SELECT $1::uuid, $2::uuid, $3::int
		WHERE $3::int <= $4::int
		ON CONFLICT (user_id, voting_window_id) DO UPDATE
		SET total = vote_tallies.total + EXCLUDED.total
		WHERE vote_tallies.total + EXCLUDED.total <= $4::int
		RETURNING total
	`
	var total int
	err = tx.QueryRowContext(ctx, queryTally, userID, windowID, requested, maxVotes).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: submission of %d votes exceeds the limit of %d", domain.ErrQuotaExceeded, requested, maxVotes)
		}
		return 0, fmt.Errorf("failed to update vote tally: %w", err)
	}

	queryVote := `
		INSERT INTO votes (id, user_id, contestant_id, voting_window_id, vote_count)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, queryVote)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare vote statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range allocations {
		if _, err := stmt.ExecContext(ctx, uuid.New(), userID, a.ContestantID, windowID, a.Count); err != nil {
			return 0, fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return total, nil
}

func (r *voteRepository) History(ctx context.Context, userID uuid.UUID) ([]domain.VoteHistoryEntry, error) {
	query := `
		SELECT w.name, w.start_time, w.end_time, c.name, v.vote_count, v.created_at
		FROM votes v
		JOIN voting_windows w ON w.id = v.voting_window_id
		JOIN contestants c ON c.id = v.contestant_id
		WHERE v.user_id = $1
		ORDER BY v.created_at DESC, v.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote history: %w", err)
	}
	defer rows.Close()

	history := []domain.VoteHistoryEntry{}
	for rows.Next() {
		var e domain.VoteHistoryEntry
		if err := rows.Scan(&e.VotingWindowName, &e.VotingWindowStart, &e.VotingWindowEnd, &e.ContestantName, &e.VoteCount, &e.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote history: %w", err)
		}
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote history: %w", err)
	}
	return history, nil
}

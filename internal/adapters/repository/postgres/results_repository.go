package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

type resultsRepository struct {
	db *sql.DB
}

func NewResultsRepository(db *sql.DB) ports.ResultsRepository {
	return &resultsRepository{
		db: db,
	}
}

// ContestantTotals sums the votes each contestant received in a window. Contestants
// without votes are left out.
func (r *resultsRepository) ContestantTotals(ctx context.Context, windowID uuid.UUID) ([]domain.ContestantVoteStat, error) {
	query := `
		SELECT c.id, c.name, SUM(v.vote_count) AS total_votes
		FROM votes v
		JOIN contestants c ON c.id = v.contestant_id
		WHERE v.voting_window_id = $1
		GROUP BY c.id, c.name
		ORDER BY total_votes DESC, c.id
	`
	rows, err := r.db.QueryContext(ctx, query, windowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contestant totals: %w", err)
	}
	defer rows.Close()

	stats := []domain.ContestantVoteStat{}
	for rows.Next() {
		var s domain.ContestantVoteStat
		if err := rows.Scan(&s.ContestantID, &s.ContestantName, &s.TotalVotes); err != nil {
			return nil, fmt.Errorf("failed to scan contestant totals: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contestant totals: %w", err)
	}
	return stats, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

// activationLockKey serializes window activations across connections.
const activationLockKey = 7_340_001

const windowColumns = `
	w.id, w.name, w.start_time, w.end_time, w.max_votes_per_user, w.is_active,
	ARRAY(
		SELECT wc.contestant_id::text FROM voting_window_contestants wc
		WHERE wc.voting_window_id = w.id ORDER BY wc.contestant_id
	),
	w.created_at, w.updated_at
`

type windowRepository struct {
	db *sql.DB
}

func NewWindowRepository(db *sql.DB) ports.WindowRepository {
	return &windowRepository{
		db: db,
	}
}

func (r *windowRepository) Save(ctx context.Context, window *domain.VotingWindow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryWindow := `
		INSERT INTO voting_windows (id, name, start_time, end_time, max_votes_per_user, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, queryWindow,
		window.ID, window.Name, window.StartTime, window.EndTime, window.MaxVotesPerUser, window.IsActive,
	).Scan(&window.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert voting window: %w", err)
	}

	queryContestants := `
		INSERT INTO voting_window_contestants (voting_window_id, contestant_id)
		SELECT $1::uuid, unnest($2::uuid[])
	`
	if _, err := tx.ExecContext(ctx, queryContestants, window.ID, uuidStrings(window.ContestantIDs)); err != nil {
		return fmt.Errorf("failed to link contestants: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *windowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error) {
	return getWindow(ctx, r.db, id)
}

func (r *windowRepository) List(ctx context.Context, limit, offset int) ([]*domain.VotingWindow, error) {
	query := `SELECT ` + windowColumns + `
		FROM voting_windows w
		ORDER BY w.created_at DESC, w.id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list voting windows: %w", err)
	}
	defer rows.Close()

	windows := []*domain.VotingWindow{}
	for rows.Next() {
		window, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voting windows: %w", err)
	}
	return windows, nil
}

func (r *windowRepository) Activate(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, activationLockKey); err != nil {
		return nil, fmt.Errorf("failed to acquire activation lock: %w", err)
	}

	if _, err := getWindow(ctx, tx, id); err != nil {
		return nil, err
	}

	clearQuery := `UPDATE voting_windows SET is_active = false, updated_at = NOW() WHERE is_active AND id <> $1`
	if _, err := tx.ExecContext(ctx, clearQuery, id); err != nil {
		return nil, fmt.Errorf("failed to deactivate voting windows: %w", err)
	}

	setQuery := `UPDATE voting_windows SET is_active = true, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, setQuery, id); err != nil {
		return nil, fmt.Errorf("failed to activate voting window: %w", err)
	}

	window, err := getWindow(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return window, nil
}

func (r *windowRepository) Deactivate(ctx context.Context, id uuid.UUID) (*domain.VotingWindow, error) {
	query := `UPDATE voting_windows SET is_active = false, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate voting window: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: voting window %s", domain.ErrNotFound, id)
	}
	return getWindow(ctx, r.db, id)
}

func (r *windowRepository) GetOpen(ctx context.Context, now time.Time) (*domain.VotingWindow, error) {
	query := `SELECT ` + windowColumns + `
		FROM voting_windows w
		WHERE w.is_active AND w.start_time <= $1 AND w.end_time >= $1
		LIMIT 1
	`
	window, err := scanWindow(r.db.QueryRowContext(ctx, query, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return window, nil
}

func getWindow(ctx context.Context, q querier, id uuid.UUID) (*domain.VotingWindow, error) {
	query := `SELECT ` + windowColumns + `
		FROM voting_windows w
		WHERE w.id = $1
	`
	window, err := scanWindow(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: voting window %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return window, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWindow(row rowScanner) (*domain.VotingWindow, error) {
	var (
		window        domain.VotingWindow
		contestantIDs pq.StringArray
		updatedAt     sql.NullTime
	)
	err := row.Scan(
		&window.ID, &window.Name, &window.StartTime, &window.EndTime, &window.MaxVotesPerUser, &window.IsActive,
		&contestantIDs, &window.CreatedAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan voting window: %w", err)
	}

	window.ContestantIDs, err = parseUUIDs(contestantIDs)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		window.UpdatedAt = &updatedAt.Time
	}
	return &window, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

type contestantRepository struct {
	db *sql.DB
}

func NewContestantRepository(db *sql.DB) ports.ContestantRepository {
	return &contestantRepository{
		db: db,
	}
}

func (r *contestantRepository) Save(ctx context.Context, contestant *domain.Contestant) error {
	query := `
		INSERT INTO contestants (id, name, age, gender, details, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		contestant.ID, contestant.Name, contestant.Age, string(contestant.Gender), contestant.Details, contestant.ImageURL,
	).Scan(&contestant.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contestant: %w", err)
	}
	return nil
}

func (r *contestantRepository) List(ctx context.Context, limit, offset int) ([]*domain.Contestant, error) {
	query := `
		SELECT id, name, age, gender, details, image_url, created_at, updated_at
		FROM contestants
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contestants: %w", err)
	}
	defer rows.Close()

	return scanContestants(rows)
}

func (r *contestantRepository) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM contestants WHERE id = ANY($1::uuid[])`
	var count int
	if err := r.db.QueryRowContext(ctx, query, uuidStrings(ids)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contestants: %w", err)
	}
	return count, nil
}

func (r *contestantRepository) ListByWindow(ctx context.Context, windowID uuid.UUID) ([]*domain.Contestant, error) {
	query := `
		SELECT c.id, c.name, c.age, c.gender, c.details, c.image_url, c.created_at, c.updated_at
		FROM contestants c
		JOIN voting_window_contestants wc ON wc.contestant_id = c.id
		WHERE wc.voting_window_id = $1
		ORDER BY c.name, c.id
	`
	rows, err := r.db.QueryContext(ctx, query, windowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list window contestants: %w", err)
	}
	defer rows.Close()

	return scanContestants(rows)
}

func scanContestants(rows *sql.Rows) ([]*domain.Contestant, error) {
	contestants := []*domain.Contestant{}
	for rows.Next() {
		var (
			c         domain.Contestant
			gender    string
			details   sql.NullString
			imageURL  sql.NullString
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Age, &gender, &details, &imageURL, &c.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contestant: %w", err)
		}
		c.Gender = domain.Gender(gender)
		if details.Valid {
			c.Details = &details.String
		}
		if imageURL.Valid {
			c.ImageURL = &imageURL.String
		}
		if updatedAt.Valid {
			c.UpdatedAt = &updatedAt.Time
		}
		contestants = append(contestants, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contestants: %w", err)
	}
	return contestants, nil
}

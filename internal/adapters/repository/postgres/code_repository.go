package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

type CodeRepository struct {
	db *sql.DB
}

func NewCodeRepository(db *sql.DB) ports.CodeRepository {
	return &CodeRepository{db: db}
}

func (r *CodeRepository) Create(ctx context.Context, code *domain.OneTimeCode) error {
	query := `
		INSERT INTO one_time_codes (id, mobile_number, email, code, expires_at, is_used)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		code.ID, code.MobileNumber, code.Email, code.Code, code.ExpiresAt, code.IsUsed,
	).Scan(&code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert one-time code: %w", err)
	}
	return nil
}

func (r *CodeRepository) Consume(ctx context.Context, identifier domain.Identifier, code string, now time.Time) (*domain.OneTimeCode, error) {
	column := "email"
	if identifier.IsMobile() {
		column = "mobile_number"
	}

	query := `
		UPDATE one_time_codes SET is_used = true
		WHERE id = (
			SELECT id FROM one_time_codes
			WHERE ` + column + ` = $1 AND code = $2 AND NOT is_used AND expires_at > $3
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE
		) AND NOT is_used
		RETURNING id, mobile_number, email, code, expires_at, is_used, created_at
	`
	var (
		otp    domain.OneTimeCode
		mobile sql.NullString
		email  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, identifier.String(), code, now).Scan(
		&otp.ID, &mobile, &email, &otp.Code, &otp.ExpiresAt, &otp.IsUsed, &otp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume one-time code: %w", err)
	}
	if mobile.Valid {
		otp.MobileNumber = &mobile.String
	}
	if email.Valid {
		otp.Email = &email.String
	}
	return &otp, nil
}

// DeleteStale removes codes that expired or were used before the cutoff.
func (r *CodeRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM one_time_codes WHERE expires_at < $1 OR (is_used AND created_at < $1)`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale one-time codes: %w", err)
	}
	return res.RowsAffected()
}

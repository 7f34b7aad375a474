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

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier domain.Identifier) (*domain.User, error) {
	query := `SELECT id, mobile_number, email, created_at, updated_at FROM users WHERE email = $1`
	if identifier.IsMobile() {
		query = `SELECT id, mobile_number, email, created_at, updated_at FROM users WHERE mobile_number = $1`
	}
	return scanUser(r.db.QueryRowContext(ctx, query, identifier.String()))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, mobile_number, email, created_at, updated_at FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, mobile_number, email) VALUES ($1, $2, $3) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.MobileNumber, user.Email).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		user      domain.User
		mobile    sql.NullString
		email     sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(&user.ID, &mobile, &email, &user.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if mobile.Valid {
		user.MobileNumber = &mobile.String
	}
	if email.Valid {
		user.Email = &email.String
	}
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}
	return &user, nil
}

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) ports.AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	query := `SELECT id, username, hashed_password, created_at FROM admins WHERE username = $1`
	admin := &domain.Admin{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&admin.ID, &admin.Username, &admin.HashedPassword, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `INSERT INTO admins (id, username, hashed_password) VALUES ($1, $2, $3) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, admin.ID, admin.Username, admin.HashedPassword).Scan(&admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: admin with username %q", domain.ErrConflict, admin.Username)
		}
		return err
	}
	return nil
}

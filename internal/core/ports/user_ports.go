package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
)

type UserRepository interface {
	GetByIdentifier(ctx context.Context, identifier domain.Identifier) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) error
}

type CodeRepository interface {
	Create(ctx context.Context, code *domain.OneTimeCode) error
	// Consume marks the newest unused, unexpired code matching identifier and code as
	// used and returns it, or returns nil when there is none.
	Consume(ctx context.Context, identifier domain.Identifier, code string, now time.Time) (*domain.OneTimeCode, error)
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

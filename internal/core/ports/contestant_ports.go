package ports

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
)

type ContestantRepository interface {
	Save(ctx context.Context, contestant *domain.Contestant) error
	List(ctx context.Context, limit, offset int) ([]*domain.Contestant, error)
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)
	ListByWindow(ctx context.Context, windowID uuid.UUID) ([]*domain.Contestant, error)
}

// ImageStore persists an uploaded contestant picture and returns the reference
// clients use to fetch it. Delete takes a reference returned by Save.
type ImageStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

type CreateContestantInput struct {
	Name      string
	Age       int
	Gender    domain.Gender
	Details   *string
	ImageURL  *string
	Image     io.Reader
	ImageName string
}

type ContestantService interface {
	Create(ctx context.Context, input CreateContestantInput) (*domain.Contestant, error)
	List(ctx context.Context, page PageInput) ([]*domain.Contestant, error)
}

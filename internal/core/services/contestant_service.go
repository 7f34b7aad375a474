package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type contestantService struct {
	repo   ports.ContestantRepository
	images ports.ImageStore
}

func NewContestantService(repo ports.ContestantRepository, images ports.ImageStore) ports.ContestantService {
	return &contestantService{
		repo:   repo,
		images: images,
	}
}

func (s *contestantService) Create(ctx context.Context, input ports.CreateContestantInput) (*domain.Contestant, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if input.Age <= 0 || input.Age > domain.MaxCount {
		return nil, fmt.Errorf("%w: age must be between 1 and %d", domain.ErrValidation, domain.MaxCount)
	}
	if !input.Gender.Valid() {
		return nil, fmt.Errorf("%w: gender must be one of Male, Female, Others", domain.ErrValidation)
	}

	contestant := &domain.Contestant{
		ID:        uuid.New(),
		Name:      name,
		Age:       input.Age,
		Gender:    input.Gender,
		Details:   input.Details,
		ImageURL:  input.ImageURL,
		CreatedAt: time.Now(),
	}

	if input.Image != nil {
		if s.images == nil {
			return nil, fmt.Errorf("%w: image uploads are not enabled", domain.ErrValidation)
		}
		ref, err := s.images.Save(ctx, contestant.ID.String()+"-"+input.ImageName, input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to store contestant image: %w", err)
		}
		contestant.ImageURL = &ref
	}

	if err := s.repo.Save(ctx, contestant); err != nil {
		if input.Image != nil {
			if rmErr := s.images.Delete(ctx, *contestant.ImageURL); rmErr != nil {
				utils.Logger.WithError(rmErr).Warnf("Failed to remove image %s", *contestant.ImageURL)
			}
		}
		return nil, err
	}
	return contestant, nil
}

func (s *contestantService) List(ctx context.Context, page ports.PageInput) ([]*domain.Contestant, error) {
	limit, offset, err := pageBounds(page)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, limit, offset)
}

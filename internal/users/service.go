package users

import (
	"context"

	"seatline/internal/shared/apperrors"

	"github.com/google/uuid"
)

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	IsVerifiedOrganizer(ctx context.Context, userID uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// IsVerifiedOrganizer backs the publish check of the events service.
// An unknown user is simply not verified.
func (s *service) IsVerifiedOrganizer(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return user.IsActive && user.IsVerifiedOrganizer(), nil
}

package users

import (
	"context"
	"fmt"

	"github.com/gescom-app/gescom/internal/shared"
)

// Service exposes read access to the agent directory.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, fmt.Errorf("%w: invalid user id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// ResolveAgent resolves a free-text responsable value to a user account.
func (s *Service) ResolveAgent(ctx context.Context, nameOrEmail string) (User, error) {
	if nameOrEmail == "" {
		return User{}, fmt.Errorf("%w: responsable is empty", shared.ErrValidation)
	}
	return s.repo.ResolveAgent(ctx, nameOrEmail)
}

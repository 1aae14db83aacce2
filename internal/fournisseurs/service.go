package fournisseurs

import (
	"context"
	"fmt"
	"strings"

	"github.com/gescom-app/gescom/internal/shared"
)

// Service wraps the supplier registry business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new supplier owned by userID. Email must be unused by
// any supplier, whoever owns it. The pre-check only exists to produce a
// friendlier error; the unique index still decides races.
func (s *Service) Create(ctx context.Context, req CreateRequest, userID int64) (Fournisseur, error) {
	if err := validateCreate(req); err != nil {
		return Fournisseur{}, err
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return Fournisseur{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return Fournisseur{}, fmt.Errorf("email %s: %w", req.Email, shared.ErrConflict)
	}

	return s.repo.Create(ctx, Fournisseur{
		FullName: req.FullName,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		UserID:   userID,
	})
}

// List returns the suppliers owned by userID, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]Fournisseur, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetByID returns the supplier only when owned by userID.
func (s *Service) GetByID(ctx context.Context, id, userID int64) (Fournisseur, error) {
	if id <= 0 {
		return Fournisseur{}, fmt.Errorf("%w: invalid fournisseur id", shared.ErrValidation)
	}
	return s.repo.GetForUser(ctx, id, userID)
}

// Update applies non-empty fields of req onto the stored record. A changed
// email is re-checked for cross-registry uniqueness.
func (s *Service) Update(ctx context.Context, id, userID int64, req UpdateRequest) (Fournisseur, error) {
	current, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return Fournisseur{}, err
	}

	updated := current
	if req.FullName != "" {
		updated.FullName = req.FullName
	}
	if req.Address != "" {
		updated.Address = req.Address
	}
	if req.Phone != "" {
		updated.Phone = req.Phone
	}
	if req.Email != "" && req.Email != current.Email {
		taken, err := s.repo.EmailTaken(ctx, req.Email, id)
		if err != nil {
			return Fournisseur{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return Fournisseur{}, fmt.Errorf("email %s: %w", req.Email, shared.ErrConflict)
		}
		updated.Email = req.Email
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return Fournisseur{}, err
	}
	return updated, nil
}

// Delete permanently removes the supplier when owned by userID.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid fournisseur id", shared.ErrValidation)
	}
	return s.repo.Delete(ctx, id, userID)
}

func validateCreate(req CreateRequest) error {
	switch {
	case strings.TrimSpace(req.FullName) == "":
		return fmt.Errorf("%w: full name is required", shared.ErrValidation)
	case strings.TrimSpace(req.Address) == "":
		return fmt.Errorf("%w: address is required", shared.ErrValidation)
	case strings.TrimSpace(req.Phone) == "":
		return fmt.Errorf("%w: phone is required", shared.ErrValidation)
	case strings.TrimSpace(req.Email) == "":
		return fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	return nil
}

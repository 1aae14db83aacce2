package fournisseurs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gescom-app/gescom/internal/platform/db"
	"github.com/gescom-app/gescom/internal/shared"
)

// Repository provides persistence for the supplier registry. Get, Update and
// Delete are scoped to the owning user: a record owned by someone else is
// reported the same way as a missing one.
type Repository interface {
	Create(ctx context.Context, f Fournisseur) (Fournisseur, error)
	ListByUser(ctx context.Context, userID int64) ([]Fournisseur, error)
	GetForUser(ctx context.Context, id, userID int64) (Fournisseur, error)
	Update(ctx context.Context, f Fournisseur) error
	Delete(ctx context.Context, id, userID int64) error
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const columns = `id, full_name, address, phone, email, user_id, created_at`

func scan(row pgx.Row) (Fournisseur, error) {
	var f Fournisseur
	err := row.Scan(&f.ID, &f.FullName, &f.Address, &f.Phone, &f.Email, &f.UserID, &f.CreatedAt)
	return f, err
}

func (r *repository) Create(ctx context.Context, f Fournisseur) (Fournisseur, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO fournisseurs (full_name, address, phone, email, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		f.FullName, f.Address, f.Phone, f.Email, f.UserID, now).Scan(&f.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Fournisseur{}, fmt.Errorf("email %s: %w", f.Email, shared.ErrConflict)
		}
		return Fournisseur{}, err
	}
	f.CreatedAt = now
	return f, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Fournisseur, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+columns+` FROM fournisseurs WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Fournisseur
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *repository) GetForUser(ctx context.Context, id, userID int64) (Fournisseur, error) {
	f, err := scan(r.db.QueryRow(ctx,
		`SELECT `+columns+` FROM fournisseurs WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Fournisseur{}, fmt.Errorf("fournisseur %d: %w", id, shared.ErrNotFound)
		}
		return Fournisseur{}, err
	}
	return f, nil
}

func (r *repository) Update(ctx context.Context, f Fournisseur) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE fournisseurs SET full_name = $1, address = $2, phone = $3, email = $4
		 WHERE id = $5 AND user_id = $6`,
		f.FullName, f.Address, f.Phone, f.Email, f.ID, f.UserID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", f.Email, shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fournisseur %d: %w", f.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fournisseurs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fournisseur %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM fournisseurs WHERE email = $1 AND id <> $2)`,
		email, excludeID).Scan(&exists)
	return exists, err
}

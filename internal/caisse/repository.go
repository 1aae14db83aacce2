package caisse

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

// ListRequest filters the settlement listing.
type ListRequest struct {
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}

// Repository provides persistence for caisse settlements.
type Repository interface {
	Create(ctx context.Context, v Vente) (Vente, error)
	GetByOrder(ctx context.Context, orderID int64) (Vente, error)
	List(ctx context.Context, req ListRequest) ([]Vente, int, error)
	DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const venteColumns = `id, order_id, user_id, montant, methode_paiement, reduction, date_vente, description`

func scanVente(row pgx.Row) (Vente, error) {
	var v Vente
	err := row.Scan(&v.ID, &v.OrderID, &v.UserID, &v.Montant, &v.MethodePaiement, &v.Reduction, &v.DateVente, &v.Description)
	return v, err
}

func (r *repository) Create(ctx context.Context, v Vente) (Vente, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO caisse_ventes (order_id, user_id, montant, methode_paiement, reduction, date_vente, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		v.OrderID, v.UserID, v.Montant, v.MethodePaiement, v.Reduction, v.DateVente, v.Description).Scan(&v.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Vente{}, fmt.Errorf("order %d already settled: %w", v.OrderID, shared.ErrConflict)
		}
		return Vente{}, err
	}
	return v, nil
}

func (r *repository) GetByOrder(ctx context.Context, orderID int64) (Vente, error) {
	v, err := scanVente(r.db.QueryRow(ctx,
		`SELECT `+venteColumns+` FROM caisse_ventes WHERE order_id = $1`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vente{}, fmt.Errorf("settlement for order %d: %w", orderID, shared.ErrNotFound)
		}
		return Vente{}, err
	}
	return v, nil
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Vente, int, error) {
	var conditions []string
	var args []interface{}
	if req.From != nil {
		args = append(args, *req.From)
		conditions = append(conditions, fmt.Sprintf("date_vente >= $%d", len(args)))
	}
	if req.To != nil {
		args = append(args, *req.To)
		conditions = append(conditions, fmt.Sprintf("date_vente <= $%d", len(args)))
	}
	where := ""
	for i, cond := range conditions {
		if i == 0 {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM caisse_ventes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT `+venteColumns+` FROM caisse_ventes%s ORDER BY date_vente DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Vente
	for rows.Next() {
		v, err := scanVente(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, v)
	}
	return result, total, rows.Err()
}

func (r *repository) DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', date_vente) AS day, COUNT(*), COALESCE(SUM(montant - COALESCE(reduction, 0)), 0)
		 FROM caisse_ventes
		 WHERE date_vente >= $1 AND date_vente < $2
		 GROUP BY day ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Day, &d.Count, &d.Total); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

package orders

import (
	"context"
	"fmt"

	"github.com/gescom-app/gescom/internal/shared"
)

// Catalog exposes the current product prices snapshotted onto new order lines.
type Catalog interface {
	PricesByID(ctx context.Context, ids []int64) (map[int64]float64, error)
}

// SettleOptions carries the caller's choices for a delivery settlement.
type SettleOptions struct {
	PaymentMethod string
	Discount      *float64
}

// Settler records the caisse settlement when an order is delivered. It must
// be safe to invoke more than once for the same order.
type Settler interface {
	SettleDelivered(ctx context.Context, o *Order, opts SettleOptions) error
}

// Service provides business logic for orders.
type Service struct {
	repo    Repository
	catalog Catalog
	settler Settler
}

// NewService constructs a Service.
func NewService(repo Repository, cat Catalog) *Service {
	return &Service{repo: repo, catalog: cat}
}

// SetSettler wires the caisse settlement rule into the delivered transition.
func (s *Service) SetSettler(settler Settler) {
	s.settler = settler
}

// Create persists a new order with its line items. Unit prices are
// snapshotted from the catalog at creation time.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}
	ids := make([]int64, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be positive", shared.ErrValidation, i+1)
		}
		ids = append(ids, item.ProductID)
	}

	prices, err := s.catalog.PricesByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	for _, item := range req.Items {
		if _, ok := prices[item.ProductID]; !ok {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, shared.ErrNotFound)
		}
	}

	var orderID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, Order{
			ClientID:    req.ClientID,
			ClientName:  req.ClientName,
			Responsable: req.Responsable,
			Status:      StatusPending,
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		orderID = id

		for _, item := range req.Items {
			if _, err := repo.InsertItem(ctx, Item{
				OrderID:   orderID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: prices[item.ProductID],
			}); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, orderID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]Order, int, error) {
	if req.Status != nil && !req.Status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
	}
	return s.repo.List(ctx, req)
}

// UpdateStatus moves the order to a new lifecycle status. On the transition
// into DELIVERED the settlement rule runs first; the settlement is idempotent
// per order, so a retry after a failed status write cannot double-record the
// sale.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*Order, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, req.Status)
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == req.Status {
		return order, nil
	}
	if !order.Status.CanTransition(req.Status) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", shared.ErrValidation, order.Status, req.Status)
	}

	if req.Status == StatusDelivered && s.settler != nil {
		opts := SettleOptions{PaymentMethod: req.PaymentMethod, Discount: req.Discount}
		if err := s.settler.SettleDelivered(ctx, order, opts); err != nil {
			return nil, fmt.Errorf("settle order %d: %w", id, err)
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == StatusDelivered {
		return fmt.Errorf("%w: delivered orders cannot be deleted", shared.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

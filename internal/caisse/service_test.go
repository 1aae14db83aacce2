package caisse

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gescom-app/gescom/internal/orders"
	"github.com/gescom-app/gescom/internal/shared"
	"github.com/gescom-app/gescom/internal/users"
)

type memoryRepo struct {
	byOrder map[int64]Vente
	nextID  int64

	// raceInject, when set, sneaks a settlement in after the idempotency
	// check has already reported "no settlement".
	raceInject *Vente
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byOrder: make(map[int64]Vente)}
}

func (r *memoryRepo) Create(ctx context.Context, v Vente) (Vente, error) {
	if r.raceInject != nil {
		r.byOrder[r.raceInject.OrderID] = *r.raceInject
		r.raceInject = nil
	}
	if _, exists := r.byOrder[v.OrderID]; exists {
		return Vente{}, fmt.Errorf("order %d already settled: %w", v.OrderID, shared.ErrConflict)
	}
	r.nextID++
	v.ID = r.nextID
	r.byOrder[v.OrderID] = v
	return v, nil
}

func (r *memoryRepo) GetByOrder(ctx context.Context, orderID int64) (Vente, error) {
	v, ok := r.byOrder[orderID]
	if !ok {
		return Vente{}, fmt.Errorf("settlement for order %d: %w", orderID, shared.ErrNotFound)
	}
	return v, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListRequest) ([]Vente, int, error) {
	var result []Vente
	for _, v := range r.byOrder {
		result = append(result, v)
	}
	return result, len(result), nil
}

func (r *memoryRepo) DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error) {
	return nil, nil
}

type staticAgents struct {
	agents map[string]users.User
}

func (d staticAgents) ResolveAgent(ctx context.Context, nameOrEmail string) (users.User, error) {
	if u, ok := d.agents[nameOrEmail]; ok {
		return u, nil
	}
	return users.User{}, fmt.Errorf("agent %q: %w", nameOrEmail, shared.ErrNotFound)
}

type staticPrices map[int64]float64

func (p staticPrices) PricesByID(ctx context.Context, ids []int64) (map[int64]float64, error) {
	result := make(map[int64]float64)
	for _, id := range ids {
		if price, ok := p[id]; ok {
			result[id] = price
		}
	}
	return result, nil
}

func testOrder() *orders.Order {
	return &orders.Order{
		ID:          12,
		ClientID:    4,
		ClientName:  "Acme",
		Responsable: "Leila Ben Salah",
		Status:      orders.StatusReady,
		Items: []orders.Item{
			{ProductID: 1, Quantity: 2, UnitPrice: 10.50},
			{ProductID: 2, Quantity: 1, UnitPrice: 5.00},
		},
	}
}

func testAgents() staticAgents {
	return staticAgents{agents: map[string]users.User{
		"Leila Ben Salah": {ID: 3, FullName: "Leila Ben Salah", Email: "leila@gescom.tn"},
		"leila@gescom.tn": {ID: 3, FullName: "Leila Ben Salah", Email: "leila@gescom.tn"},
	}}
}

func newTestService(repo Repository, source PriceSource) *Service {
	prices := staticPrices{1: 10.50, 2: 5.00}
	return NewService(slog.Default(), repo, testAgents(), prices, ServiceConfig{PriceSource: source})
}

func TestOnOrderDeliveredAmount(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, PriceSourceDeliveryTime)

	vente, err := svc.OnOrderDelivered(context.Background(), testOrder(), RecordOptions{})
	require.NoError(t, err)
	require.InDelta(t, 26.00, vente.Montant, 0.0001)
	require.Equal(t, int64(12), vente.OrderID)
	require.Equal(t, int64(3), vente.UserID)
	require.Equal(t, DefaultPaymentMethod, vente.MethodePaiement)
	require.Contains(t, vente.Description, "#12")
	require.Contains(t, vente.Description, "Acme")
	require.Len(t, repo.byOrder, 1)
}

func TestOnOrderDeliveredIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, PriceSourceDeliveryTime)
	ctx := context.Background()

	first, err := svc.OnOrderDelivered(ctx, testOrder(), RecordOptions{})
	require.NoError(t, err)

	second, err := svc.OnOrderDelivered(ctx, testOrder(), RecordOptions{})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.byOrder, 1)
}

func TestOnOrderDeliveredRaceAdoptsWinner(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, PriceSourceDeliveryTime)

	winner := Vente{ID: 99, OrderID: 12, UserID: 3, Montant: 26.00}
	repo.raceInject = &winner

	vente, err := svc.OnOrderDelivered(context.Background(), testOrder(), RecordOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(99), vente.ID)
	require.Len(t, repo.byOrder, 1)
}

func TestOnOrderDeliveredUnknownAgent(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, PriceSourceDeliveryTime)

	order := testOrder()
	order.Responsable = "nobody@nowhere.tn"

	_, err := svc.OnOrderDelivered(context.Background(), order, RecordOptions{})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.byOrder)
}

func TestOnOrderDeliveredResolvesAgentByEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, PriceSourceDeliveryTime)

	order := testOrder()
	order.Responsable = "leila@gescom.tn"

	vente, err := svc.OnOrderDelivered(context.Background(), order, RecordOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(3), vente.UserID)
}

func TestOnOrderDeliveredInvalidMethod(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, PriceSourceDeliveryTime)

	_, err := svc.OnOrderDelivered(context.Background(), testOrder(), RecordOptions{Method: "bitcoin"})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.byOrder)
}

func TestOnOrderDeliveredPaymentMethodAndDiscount(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, PriceSourceDeliveryTime)

	discount := 2.0
	vente, err := svc.OnOrderDelivered(context.Background(), testOrder(), RecordOptions{
		Method:   PaymentCheque,
		Discount: &discount,
	})
	require.NoError(t, err)
	require.Equal(t, PaymentCheque, vente.MethodePaiement)
	require.NotNil(t, vente.Reduction)
	require.InDelta(t, 2.0, *vente.Reduction, 0.0001)
}

func TestPriceSourceOrderTime(t *testing.T) {
	repo := newMemoryRepo()
	// Current catalog prices differ from the snapshot on the order lines.
	svc := NewService(slog.Default(), repo, testAgents(), staticPrices{1: 20.00, 2: 9.00}, ServiceConfig{PriceSource: PriceSourceOrderTime})

	vente, err := svc.OnOrderDelivered(context.Background(), testOrder(), RecordOptions{})
	require.NoError(t, err)
	require.InDelta(t, 26.00, vente.Montant, 0.0001)
}

func TestPriceSourceDeliveryTimeUsesCurrentPrices(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, testAgents(), staticPrices{1: 20.00, 2: 9.00}, ServiceConfig{PriceSource: PriceSourceDeliveryTime})

	vente, err := svc.OnOrderDelivered(context.Background(), testOrder(), RecordOptions{})
	require.NoError(t, err)
	require.InDelta(t, 49.00, vente.Montant, 0.0001)
}

func TestDeliveryTimeMissingProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, testAgents(), staticPrices{1: 10.50}, ServiceConfig{PriceSource: PriceSourceDeliveryTime})

	_, err := svc.OnOrderDelivered(context.Background(), testOrder(), RecordOptions{})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.byOrder)
}

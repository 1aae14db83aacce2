package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gescom-app/gescom/internal/shared"
)

type memoryRepo struct {
	orders     map[int64]Order
	items      map[int64][]Item
	nextID     int64
	nextItemID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[int64]Order), items: make(map[int64][]Item)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Create(ctx context.Context, o Order) (int64, error) {
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	r.orders[o.ID] = o
	return o.ID, nil
}

func (r *memoryRepo) InsertItem(ctx context.Context, item Item) (int64, error) {
	r.nextItemID++
	item.ID = r.nextItemID
	r.items[item.OrderID] = append(r.items[item.OrderID], item)
	return item.ID, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	o.Items = append([]Item(nil), r.items[id]...)
	return &o, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListRequest) ([]Order, int, error) {
	var result []Order
	for _, o := range r.orders {
		if req.Status == nil || o.Status == *req.Status {
			result = append(result, o)
		}
	}
	return result, len(result), nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	delete(r.orders, id)
	delete(r.items, id)
	return nil
}

type staticCatalog map[int64]float64

func (c staticCatalog) PricesByID(ctx context.Context, ids []int64) (map[int64]float64, error) {
	result := make(map[int64]float64)
	for _, id := range ids {
		if price, ok := c[id]; ok {
			result[id] = price
		}
	}
	return result, nil
}

type recordingSettler struct {
	calls int
	fail  error
	last  *Order
	opts  SettleOptions
}

func (s *recordingSettler) SettleDelivered(ctx context.Context, o *Order, opts SettleOptions) error {
	s.calls++
	s.last = o
	s.opts = opts
	return s.fail
}

func validCreate() CreateRequest {
	return CreateRequest{
		ClientID:    4,
		ClientName:  "Acme",
		Responsable: "Leila Ben Salah",
		Items: []CreateItemReq{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func newTestService(repo *memoryRepo) (*Service, *recordingSettler) {
	svc := NewService(repo, staticCatalog{1: 10.50, 2: 5.00})
	settler := &recordingSettler{}
	svc.SetSettler(settler)
	return svc, settler
}

func TestCreateSnapshotsPrices(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	order, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Len(t, order.Items, 2)
	require.InDelta(t, 10.50, order.Items[0].UnitPrice, 0.0001)
	require.InDelta(t, 5.00, order.Items[1].UnitPrice, 0.0001)
}

func TestCreateUnknownProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	req := validCreate()
	req.Items = append(req.Items, CreateItemReq{ProductID: 42, Quantity: 1})

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.orders)
}

func TestCreateRejectsNonPositiveQuantity(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	req := validCreate()
	req.Items[0].Quantity = 0

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestStatusTransitions(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	// READY straight from PENDING is not allowed.
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusReady})
	require.ErrorIs(t, err, shared.ErrValidation)

	order, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusConfirmed})
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, order.Status)

	order, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusReady})
	require.NoError(t, err)
	require.Equal(t, StatusReady, order.Status)
}

func TestDeliveredInvokesSettler(t *testing.T) {
	repo := newMemoryRepo()
	svc, settler := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusConfirmed})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusReady})
	require.NoError(t, err)

	delivered, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{
		Status:        StatusDelivered,
		PaymentMethod: "cheque",
	})
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, delivered.Status)
	require.Equal(t, 1, settler.calls)
	require.Equal(t, order.ID, settler.last.ID)
	require.Equal(t, "cheque", settler.opts.PaymentMethod)
}

func TestSettlerFailureAbortsTransition(t *testing.T) {
	repo := newMemoryRepo()
	svc, settler := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusConfirmed})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusReady})
	require.NoError(t, err)

	settler.fail = fmt.Errorf("agent %q: %w", order.Responsable, shared.ErrNotFound)
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusDelivered})
	require.ErrorIs(t, err, shared.ErrNotFound)

	current, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusReady, current.Status)
}

func TestRepeatedDeliveredIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	svc, settler := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	for _, status := range []Status{StatusConfirmed, StatusReady, StatusDelivered} {
		_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: status})
		require.NoError(t, err)
	}
	require.Equal(t, 1, settler.calls)

	// Delivering an already delivered order changes nothing and does not
	// re-invoke the settlement rule.
	again, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusDelivered})
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, again.Status)
	require.Equal(t, 1, settler.calls)
}

func TestTerminalStatusIsFinal(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusCancelled})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusConfirmed})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteDeliveredForbidden(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	for _, status := range []Status{StatusConfirmed, StatusReady, StatusDelivered} {
		_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: status})
		require.NoError(t, err)
	}

	err = svc.Delete(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrValidation)

	still, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), 404, UpdateStatusRequest{Status: StatusConfirmed})
	require.True(t, errors.Is(err, shared.ErrNotFound))
}

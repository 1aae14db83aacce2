package caisse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gescom-app/gescom/internal/orders"
	"github.com/gescom-app/gescom/internal/shared"
	"github.com/gescom-app/gescom/internal/users"
)

// PriceSource selects which unit price a settlement bills.
type PriceSource string

const (
	// PriceSourceOrderTime bills the price snapshotted on the order line.
	PriceSourceOrderTime PriceSource = "order_time"
	// PriceSourceDeliveryTime bills the product's current catalog price.
	PriceSourceDeliveryTime PriceSource = "delivery_time"
)

// AgentDirectory resolves a free-text responsable value to a user account.
type AgentDirectory interface {
	ResolveAgent(ctx context.Context, nameOrEmail string) (users.User, error)
}

// ProductPrices exposes current catalog prices, used under the
// delivery_time price source.
type ProductPrices interface {
	PricesByID(ctx context.Context, ids []int64) (map[int64]float64, error)
}

// ServiceConfig tunes the settlement rule.
type ServiceConfig struct {
	PriceSource PriceSource
}

// RecordOptions carries the caller's settlement choices.
type RecordOptions struct {
	Method   PaymentMethod
	Discount *float64
}

// Service implements the delivery settlement rule and caisse queries.
type Service struct {
	logger *slog.Logger
	repo   Repository
	agents AgentDirectory
	prices ProductPrices
	cfg    ServiceConfig
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository, agents AgentDirectory, prices ProductPrices, cfg ServiceConfig) *Service {
	if cfg.PriceSource == "" {
		cfg.PriceSource = PriceSourceDeliveryTime
	}
	return &Service{logger: logger, repo: repo, agents: agents, prices: prices, cfg: cfg}
}

var frPrinter = message.NewPrinter(language.French)

// OnOrderDelivered records the sale for a delivered order. Invoking it more
// than once for the same order returns the already-recorded settlement
// without writing anything, including when two invocations race: the unique
// index on order_id decides the winner and the loser adopts its row.
func (s *Service) OnOrderDelivered(ctx context.Context, o *orders.Order, opts RecordOptions) (Vente, error) {
	if o == nil {
		return Vente{}, fmt.Errorf("%w: order is required", shared.ErrValidation)
	}

	existing, err := s.repo.GetByOrder(ctx, o.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Vente{}, fmt.Errorf("check settlement: %w", err)
	}

	amount, err := s.orderAmount(ctx, o)
	if err != nil {
		return Vente{}, err
	}

	method := opts.Method
	if method == "" {
		method = DefaultPaymentMethod
	}
	if !method.IsValid() {
		return Vente{}, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, opts.Method)
	}
	if opts.Discount != nil && (*opts.Discount < 0 || *opts.Discount > amount) {
		return Vente{}, fmt.Errorf("%w: reduction out of range", shared.ErrValidation)
	}

	agent, err := s.agents.ResolveAgent(ctx, o.Responsable)
	if err != nil {
		return Vente{}, fmt.Errorf("resolve responsable: %w", err)
	}

	vente := Vente{
		OrderID:         o.ID,
		UserID:          agent.ID,
		Montant:         amount,
		MethodePaiement: method,
		Reduction:       opts.Discount,
		DateVente:       time.Now(),
		Description:     frPrinter.Sprintf("Règlement commande #%d, client %s, montant %.2f", o.ID, o.ClientName, amount),
	}

	created, err := s.repo.Create(ctx, vente)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			// Lost the race against a concurrent delivery of the same order.
			return s.repo.GetByOrder(ctx, o.ID)
		}
		return Vente{}, fmt.Errorf("create settlement: %w", err)
	}

	s.logger.Info("caisse vente recorded",
		slog.Int64("order_id", o.ID),
		slog.Int64("user_id", agent.ID),
		slog.Float64("montant", amount))
	return created, nil
}

// SettleDelivered adapts OnOrderDelivered to the orders.Settler interface.
func (s *Service) SettleDelivered(ctx context.Context, o *orders.Order, opts orders.SettleOptions) error {
	_, err := s.OnOrderDelivered(ctx, o, RecordOptions{
		Method:   PaymentMethod(opts.PaymentMethod),
		Discount: opts.Discount,
	})
	return err
}

// GetByOrder returns the settlement recorded for an order.
func (s *Service) GetByOrder(ctx context.Context, orderID int64) (Vente, error) {
	if orderID <= 0 {
		return Vente{}, fmt.Errorf("%w: invalid order id", shared.ErrValidation)
	}
	return s.repo.GetByOrder(ctx, orderID)
}

// List returns settlements matching the filters.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Vente, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) orderAmount(ctx context.Context, o *orders.Order) (float64, error) {
	if len(o.Items) == 0 {
		return 0, fmt.Errorf("%w: order %d has no items", shared.ErrValidation, o.ID)
	}

	if s.cfg.PriceSource == PriceSourceOrderTime {
		var amount float64
		for _, item := range o.Items {
			amount += float64(item.Quantity) * item.UnitPrice
		}
		return amount, nil
	}

	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	prices, err := s.prices.PricesByID(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load prices: %w", err)
	}

	var amount float64
	for _, item := range o.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			return 0, fmt.Errorf("product %d: %w", item.ProductID, shared.ErrNotFound)
		}
		amount += float64(item.Quantity) * price
	}
	return amount, nil
}

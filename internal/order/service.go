package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercadito/storefront/internal/address"
	"github.com/mercadito/storefront/internal/cart"
	"github.com/mercadito/storefront/internal/catalog"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrProductUnavailable = errors.New("product no longer available")
)

// Service is the order factory and lifecycle manager: it turns an
// authenticated cart into an immutable order and drives the order through
// its delivery statuses afterwards.
type Service struct {
	repo      Repository
	carts     cart.Store // the authenticated (Postgres) cart store
	catalog   catalog.Reader
	addresses address.Reader
	publisher Publisher

	freeShippingThreshold decimal.Decimal
	shippingFlatRate      decimal.Decimal
}

func NewService(repo Repository, carts cart.Store, cat catalog.Reader, addrs address.Reader,
	pub Publisher, freeThreshold, flatRate decimal.Decimal) *Service {
	return &Service{
		repo:                  repo,
		carts:                 carts,
		catalog:               cat,
		addresses:             addrs,
		publisher:             pub,
		freeShippingThreshold: freeThreshold,
		shippingFlatRate:      flatRate,
	}
}

// newOrderNumber builds "ORD-{year}-{6 digits}" with a wall-clock-derived
// suffix. Not collision-proof under concurrent checkouts; the UNIQUE
// constraint on orders.number turns a collision into a failed (retriable)
// transaction instead of a duplicate.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%06d", now.Year(), (now.UnixNano()/1000)%1000000)
}

// Create is the checkout. Prices, names and SKUs are re-resolved from the
// catalog at this instant — never taken from anything cached earlier — and
// frozen onto the order items. Order, items, stock decrements and the cart
// clear commit as one transaction; any failure leaves no trace.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod)))
	if !method.Valid() {
		return nil, ErrInvalidPayment
	}

	lines, err := s.carts.Items(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.addresses.GetByID(ctx, req.AddressID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	items := make([]Item, 0, len(lines))
	for _, ln := range lines {
		p, err := s.catalog.GetByID(ctx, ln.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("bad catalog price for %s: %w", ln.ProductID, err)
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		items = append(items, Item{
			ID:        uuid.NewString(),
			ProductID: ln.ProductID,
			Name:      p.Name,
			SKU:       p.SKU,
			UnitPrice: price.StringFixed(2),
			Quantity:  ln.Quantity,
		})
	}

	shipping := s.shippingFlatRate
	if subtotal.GreaterThanOrEqual(s.freeShippingThreshold) {
		shipping = decimal.Zero
	}
	total := subtotal.Add(shipping)

	now := time.Now()
	o := &Order{
		ID:            uuid.NewString(),
		Number:        newOrderNumber(now),
		UserID:        req.UserID,
		AddressID:     req.AddressID,
		PaymentMethod: method,
		Status:        StatusPending,
		Subtotal:      subtotal.StringFixed(2),
		ShippingCost:  shipping.StringFixed(2),
		Total:         total.StringFixed(2),
		Notes:         req.Notes,
	}
	for i := range items {
		items[i].OrderID = o.ID
	}

	if err := s.repo.Create(ctx, o, items); err != nil {
		return nil, err
	}

	o.Items = items
	o.Address = addr
	s.publish(ctx, "order.created", o)
	return o, nil
}

// UpdateStatus moves an order to any of the seven statuses. There is no
// enforced transition graph; the repository stamps the status timestamps
// and restocks on first cancellation.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (*Order, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(rawStatus)))
	if !st.Valid() {
		return nil, ErrInvalidStatus
	}
	o, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "order.status_changed", o)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, items, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	if addr, err := s.addresses.GetByID(ctx, o.AddressID); err == nil {
		o.Address = addr
	}
	return o, nil
}

func (s *Service) Items(ctx context.Context, orderID string) ([]Item, error) {
	return s.repo.GetItems(ctx, orderID)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	return s.repo.StatsByUser(ctx, userID)
}

func (s *Service) publish(ctx context.Context, pattern string, o *Order) {
	evt := Event{
		OrderID:   o.ID,
		Number:    o.Number,
		UserID:    o.UserID,
		Status:    o.Status,
		Total:     o.Total,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
		log.Printf("[events] publish %s failed: %v", pattern, err)
	}
}

package order

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadito/storefront/internal/address"
	"github.com/mercadito/storefront/internal/cart"
	"github.com/mercadito/storefront/internal/catalog"
)

//
// ---------- stubs & fakes ----------
//

type stubRepo struct {
	created      *Order
	createdItems []Item
	createErr    error

	lastOrder *Order
	lastItems []Item
}

func (s *stubRepo) Create(ctx context.Context, o *Order, items []Item) error {
	if s.createErr != nil {
		return s.createErr
	}
	cp := *o
	s.created = &cp
	s.createdItems = append([]Item(nil), items...)
	s.lastOrder = &cp
	s.lastItems = s.createdItems
	return nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	if s.lastOrder == nil || s.lastOrder.ID != id {
		return nil, nil, ErrNotFound
	}
	return s.lastOrder, s.lastItems, nil
}

func (s *stubRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	if s.lastOrder == nil || s.lastOrder.ID != orderID {
		return nil, ErrNotFound
	}
	return s.lastItems, nil
}

func (s *stubRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	if s.lastOrder != nil && s.lastOrder.UserID == userID {
		return []Order{*s.lastOrder}, nil
	}
	return []Order{}, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id string, st Status) (*Order, error) {
	if s.lastOrder == nil || s.lastOrder.ID != id {
		return nil, ErrNotFound
	}
	s.lastOrder.Status = st
	cp := *s.lastOrder
	return &cp, nil
}

func (s *stubRepo) StatsByUser(ctx context.Context, userID string) (*Stats, error) {
	return &Stats{}, nil
}

type fakeCartStore struct {
	items map[string][]cart.LineItem
}

func (f *fakeCartStore) Items(ctx context.Context, owner string) ([]cart.LineItem, error) {
	return f.items[owner], nil
}

func (f *fakeCartStore) AddItem(ctx context.Context, owner, productID string, qty int) (*cart.LineItem, error) {
	return nil, errors.New("not used")
}
func (f *fakeCartStore) SetQuantity(ctx context.Context, owner, itemID string, qty int) error {
	return errors.New("not used")
}
func (f *fakeCartStore) RemoveItem(ctx context.Context, owner, itemID string) error {
	return errors.New("not used")
}
func (f *fakeCartStore) Clear(ctx context.Context, owner string) error { return nil }

type fakeCatalog struct {
	products map[string]*catalog.Product
}

func (f *fakeCatalog) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) List(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	return nil, nil
}

type fakeAddresses struct {
	addrs map[string]*address.Address
}

func (f *fakeAddresses) GetByID(ctx context.Context, id string) (*address.Address, error) {
	a, ok := f.addrs[id]
	if !ok {
		return nil, address.ErrNotFound
	}
	return a, nil
}

type capturePublisher struct {
	patterns []string
	events   []interface{}
}

func (p *capturePublisher) Publish(ctx context.Context, pattern string, data interface{}) error {
	p.patterns = append(p.patterns, pattern)
	p.events = append(p.events, data)
	return nil
}

type fixture struct {
	svc   *Service
	repo  *stubRepo
	carts *fakeCartStore
	cat   *fakeCatalog
	pub   *capturePublisher
}

func newFixture() *fixture {
	repo := &stubRepo{}
	carts := &fakeCartStore{items: map[string][]cart.LineItem{}}
	cat := &fakeCatalog{products: map[string]*catalog.Product{}}
	addrs := &fakeAddresses{addrs: map[string]*address.Address{
		"addr-1": {ID: "addr-1", UserID: "u1", City: "Monterrey", Country: "MX"},
	}}
	pub := &capturePublisher{}
	svc := NewService(repo, carts, cat, addrs, pub,
		decimal.NewFromInt(500), decimal.RequireFromString("49.90"))
	return &fixture{svc: svc, repo: repo, carts: carts, cat: cat, pub: pub}
}

var orderNumberRe = regexp.MustCompile(`^ORD-\d{4}-\d{6}$`)

//
// ---------- tests ----------
//

func TestCreate_EmptyCart(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "addr-1", PaymentMethod: "CARD",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, f.repo.created, "no order may exist after a failed checkout")
	assert.Empty(t, f.pub.patterns)

	// the empty cart wins over a bad address: checkout state is checked
	// before fulfillment details
	_, err = f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "nope", PaymentMethod: "CARD",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreate_FreeShippingAboveThreshold(t *testing.T) {
	f := newFixture()
	f.cat.products["a"] = &catalog.Product{ID: "a", Name: "Prod A", SKU: "SKU-A", Price: "300.00", Stock: 10, Active: true}
	f.cat.products["b"] = &catalog.Product{ID: "b", Name: "Prod B", SKU: "SKU-B", Price: "150.00", Stock: 10, Active: true}
	f.carts.items["u1"] = []cart.LineItem{
		{ID: "l1", OwnerKey: "u1", ProductID: "a", Quantity: 2},
		{ID: "l2", OwnerKey: "u1", ProductID: "b", Quantity: 1},
	}

	o, err := f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "addr-1", PaymentMethod: "CARD",
	})
	require.NoError(t, err)

	assert.Equal(t, "750.00", o.Subtotal)
	assert.Equal(t, "0.00", o.ShippingCost, "subtotal >= 500 ships free")
	assert.Equal(t, "750.00", o.Total)
	assert.Equal(t, StatusPending, o.Status)
	assert.Regexp(t, orderNumberRe, o.Number)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Prod A", o.Items[0].Name)
	assert.Equal(t, "SKU-A", o.Items[0].SKU)
	assert.Equal(t, "300.00", o.Items[0].UnitPrice)
	assert.NotNil(t, o.Address)
	assert.Equal(t, []string{"order.created"}, f.pub.patterns)
}

func TestCreate_FlatRateBelowThreshold(t *testing.T) {
	f := newFixture()
	f.cat.products["c"] = &catalog.Product{ID: "c", Name: "Prod C", SKU: "SKU-C", Price: "100.00", Stock: 3, Active: true}
	f.carts.items["u1"] = []cart.LineItem{{ID: "l1", OwnerKey: "u1", ProductID: "c", Quantity: 1}}

	o, err := f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "addr-1", PaymentMethod: "CASH_ON_DELIVERY",
	})
	require.NoError(t, err)

	assert.Equal(t, "100.00", o.Subtotal)
	assert.Equal(t, "49.90", o.ShippingCost)
	assert.Equal(t, "149.90", o.Total)
}

func TestCreate_PricesFrozenAtCheckout(t *testing.T) {
	f := newFixture()
	f.cat.products["a"] = &catalog.Product{ID: "a", Name: "Prod A", SKU: "SKU-A", Price: "20.00", Stock: 10, Active: true}
	f.carts.items["u1"] = []cart.LineItem{{ID: "l1", OwnerKey: "u1", ProductID: "a", Quantity: 1}}

	o, err := f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "addr-1", PaymentMethod: "CARD",
	})
	require.NoError(t, err)

	// a later catalog edit must not touch the frozen copy
	f.cat.products["a"].Price = "999.00"
	f.cat.products["a"].Name = "Renamed"

	assert.Equal(t, "20.00", o.Items[0].UnitPrice)
	assert.Equal(t, "Prod A", o.Items[0].Name)
	assert.Equal(t, "20.00", f.repo.createdItems[0].UnitPrice)
}

func TestCreate_InvalidPaymentMethod(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "addr-1", PaymentMethod: "IOU",
	})
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestCreate_UnknownAddress(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "nope", PaymentMethod: "CARD",
	})
	assert.ErrorIs(t, err, address.ErrNotFound)
}

func TestCreate_InactiveProduct(t *testing.T) {
	f := newFixture()
	f.cat.products["a"] = &catalog.Product{ID: "a", Name: "Prod A", Price: "20.00", Stock: 5, Active: false}
	f.carts.items["u1"] = []cart.LineItem{{ID: "l1", OwnerKey: "u1", ProductID: "a", Quantity: 1}}

	_, err := f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "addr-1", PaymentMethod: "CARD",
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Nil(t, f.repo.created)
}

func TestCreate_RepoFailureAborts(t *testing.T) {
	f := newFixture()
	f.cat.products["a"] = &catalog.Product{ID: "a", Name: "Prod A", Price: "20.00", Stock: 0, Active: true}
	f.carts.items["u1"] = []cart.LineItem{{ID: "l1", OwnerKey: "u1", ProductID: "a", Quantity: 1}}
	f.repo.createErr = catalog.ErrInsufficientStock

	_, err := f.svc.Create(context.Background(), CreateOrderRequest{
		UserID: "u1", AddressID: "addr-1", PaymentMethod: "CARD",
	})
	assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Empty(t, f.pub.patterns, "no event for a failed checkout")
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	f.repo.lastOrder = &Order{ID: "o1", UserID: "u1", Status: StatusPending, Total: "10.00"}

	o, err := f.svc.UpdateStatus(context.Background(), "o1", "shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status, "status input is case-insensitive")
	assert.Equal(t, []string{"order.status_changed"}, f.pub.patterns)

	_, err = f.svc.UpdateStatus(context.Background(), "o1", "wtf")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(context.Background(), "missing", "CONFIRMED")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusHelpers(t *testing.T) {
	for _, st := range []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped} {
		assert.True(t, st.Pending(), st)
	}
	for _, st := range []Status{StatusDelivered, StatusCancelled, StatusReturned} {
		assert.False(t, st.Pending(), st)
	}
	assert.False(t, Status("PAID").Valid())
	assert.True(t, PaymentMethod("BANK_TRANSFER").Valid())
	assert.False(t, PaymentMethod("CRYPTO").Valid())
}

package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mercadito/storefront/internal/catalog"
)

// OwnerKind selects which cart store an owner key lives in.
type OwnerKind string

const (
	OwnerUser  OwnerKind = "user"  // authenticated account id, Postgres
	OwnerGuest OwnerKind = "guest" // anonymous session token, Redis
)

var ErrUnknownOwnerKind = errors.New("unknown cart owner kind")

// Service fronts both cart stores and layers the catalog join on top.
// Identity is somebody else's problem: the owner key is trusted as given.
type Service struct {
	users   Store
	guests  Store
	catalog catalog.Reader
}

func NewService(users, guests Store, cat catalog.Reader) *Service {
	return &Service{users: users, guests: guests, catalog: cat}
}

func (s *Service) store(kind OwnerKind) (Store, error) {
	switch kind {
	case OwnerUser:
		return s.users, nil
	case OwnerGuest:
		return s.guests, nil
	default:
		return nil, ErrUnknownOwnerKind
	}
}

// Snapshot joins the stored lines with live catalog data and computes the
// subtotal (current price x quantity) and total item count. Deactivated or
// deleted products do not fail the read: the entry is returned marked
// unavailable so the owner can decide to drop it. Missing products
// contribute zero to the subtotal; deactivated ones still carry their
// current price.
func (s *Service) Snapshot(ctx context.Context, kind OwnerKind, owner string) (*Snapshot, error) {
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	items, err := st.Items(ctx, owner)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{OwnerKey: owner, Items: []SnapshotItem{}}
	subtotal := decimal.Zero
	for _, it := range items {
		si := SnapshotItem{
			LineItemID: it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  "0.00",
			LineTotal:  "0.00",
		}
		p, err := s.catalog.GetByID(ctx, it.ProductID)
		if err == nil {
			price, perr := decimal.NewFromString(p.Price)
			if perr != nil {
				return nil, perr
			}
			line := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			subtotal = subtotal.Add(line)
			si.Name = p.Name
			si.UnitPrice = price.StringFixed(2)
			si.LineTotal = line.StringFixed(2)
			si.Stock = p.Stock
			si.ImageURL = p.ImageURL
			si.Available = p.Active
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return nil, err
		}
		snap.ItemCount += it.Quantity
		snap.Items = append(snap.Items, si)
	}
	snap.Subtotal = subtotal.StringFixed(2)
	return snap, nil
}

// AddItem validates the product against the catalog, then upserts into the
// owner's cart. Repeated adds accumulate quantity.
func (s *Service) AddItem(ctx context.Context, kind OwnerKind, owner, productID string, qty int) (*LineItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return st.AddItem(ctx, owner, productID, qty)
}

func (s *Service) SetQuantity(ctx context.Context, kind OwnerKind, owner, itemID string, qty int) error {
	st, err := s.store(kind)
	if err != nil {
		return err
	}
	return st.SetQuantity(ctx, owner, itemID, qty)
}

func (s *Service) RemoveItem(ctx context.Context, kind OwnerKind, owner, itemID string) error {
	st, err := s.store(kind)
	if err != nil {
		return err
	}
	return st.RemoveItem(ctx, owner, itemID)
}

func (s *Service) Clear(ctx context.Context, kind OwnerKind, owner string) error {
	st, err := s.store(kind)
	if err != nil {
		return err
	}
	return st.Clear(ctx, owner)
}

// Merge folds a guest session cart into an authenticated cart at login:
// quantities add where the product already exists, new lines are created
// otherwise, and the guest cart is consumed in the same logical operation.
// Consuming the source is what makes a repeated merge a no-op.
func (s *Service) Merge(ctx context.Context, session, userID string) error {
	items, err := s.guests.Items(ctx, session)
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, err := s.users.AddItem(ctx, userID, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return s.guests.Clear(ctx, session)
}

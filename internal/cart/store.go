package cart

import (
	"context"
	"errors"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Store holds raw cart rows for one class of owner. Two implementations
// exist: PGStore for authenticated accounts and RedisStore for anonymous
// sessions. The caller picks the store from the owner's authentication
// state; the semantics are identical.
type Store interface {
	// Items returns all line items for owner, oldest first.
	Items(ctx context.Context, owner string) ([]LineItem, error)
	// AddItem upserts: a repeated add for the same product accumulates
	// quantity instead of creating a second row.
	AddItem(ctx context.Context, owner, productID string, qty int) (*LineItem, error)
	// SetQuantity updates the quantity of an owned item. qty <= 0 removes
	// the item, same as RemoveItem.
	SetQuantity(ctx context.Context, owner, itemID string, qty int) error
	// RemoveItem deletes one owned item; ErrItemNotFound if absent.
	RemoveItem(ctx context.Context, owner, itemID string) error
	// Clear drops the whole cart. Always succeeds, idempotent.
	Clear(ctx context.Context, owner string) error
}

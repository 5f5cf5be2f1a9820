package cart

import "time"

// LineItem is one (owner, product) row of a cart. Quantity is always >= 1;
// setting it to zero or below removes the row. No price is stored here —
// carts are priced live against the catalog at read time.
type LineItem struct {
	ID        string    `json:"id"`
	OwnerKey  string    `json:"owner_key"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotItem is a cart line joined with live catalog data.
type SnapshotItem struct {
	LineItemID string `json:"line_item_id"`
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	// NUMERIC -> string
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
	Stock     int    `json:"stock"`
	ImageURL  string `json:"image_url,omitempty"`
	// Available is false when the product has been deactivated or removed
	// from the catalog. The entry stays listed so the owner can drop it;
	// what to do with it is the UI's call, not ours.
	Available bool `json:"available"`
}

// Snapshot is the cart as the storefront shows it: live-priced items plus
// the computed subtotal and total item count.
type Snapshot struct {
	OwnerKey  string         `json:"owner_key"`
	Items     []SnapshotItem `json:"items"`
	Subtotal  string         `json:"subtotal"`
	ItemCount int            `json:"item_count"`
}

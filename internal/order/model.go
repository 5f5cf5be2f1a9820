package order

import (
	"time"

	"github.com/mercadito/storefront/internal/address"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusReturned   Status = "RETURNED"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
	StatusReturned:   true,
}

func (s Status) Valid() bool { return validStatuses[s] }

// Pending reports whether an order in this status still counts against the
// account's open orders (anything not yet delivered, cancelled or returned).
func (s Status) Pending() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "CARD"
	PaymentBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentBankTransfer, PaymentCashOnDelivery:
		return true
	}
	return false
}

// Order is immutable after creation except for status and the three
// status-derived timestamps. total = subtotal + shipping_cost is fixed at
// creation time and never recomputed.
type Order struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	UserID        string        `json:"user_id"`
	AddressID     string        `json:"address_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        Status        `json:"status"`
	// NUMERIC -> string
	Subtotal     string     `json:"subtotal"`
	ShippingCost string     `json:"shipping_cost"`
	Total        string     `json:"total"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ShippedAt    *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	Items   []Item           `json:"items,omitempty"`
	Address *address.Address `json:"address,omitempty"`
}

// Item is a frozen copy of the product at the moment of purchase. It never
// re-joins the live catalog: later price or name edits must not change what
// the customer bought.
type Item struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Stats aggregates an account's order history. TotalSpent excludes
// cancelled orders; PendingOrders counts the still-open statuses.
type Stats struct {
	TotalOrders   int    `json:"total_orders"`
	TotalSpent    string `json:"total_spent"`
	PendingOrders int    `json:"pending_orders"`
}

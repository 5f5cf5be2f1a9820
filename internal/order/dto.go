package order

// CreateOrderRequest is the checkout payload. The cart itself is looked up
// server-side; only the fulfillment details travel in the request.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	UserID        string `json:"user_id"        example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	AddressID     string `json:"address_id"     example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	PaymentMethod string `json:"payment_method" example:"CARD"`
	Notes         string `json:"notes,omitempty" example:"ring the bell twice"`
}

// UpdateStatusRequest moves an order along its delivery lifecycle.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"SHIPPED"`
}

package catalog

import "time"

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description,omitempty"`
	// We store price as a string to avoid rounding errors (NUMERIC in Postgres)
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	Active    bool      `json:"active"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	// items found
	Items []Product `json:"items"`
}

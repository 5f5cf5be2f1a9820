// Package address reads delivery address snapshots. Address management is
// an external concern; orders only reference an address by id.
package address

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("address not found")

type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	FullName   string    `json:"full_name"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	Region     string    `json:"region,omitempty"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Reader interface {
	GetByID(ctx context.Context, id string) (*Address, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a Address
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, full_name, line1, line2, city, region, postal_code, country, phone, created_at
		FROM addresses WHERE id=$1
	`, id).Scan(&a.ID, &a.UserID, &a.FullName, &a.Line1, &a.Line2, &a.City, &a.Region, &a.PostalCode, &a.Country, &a.Phone, &a.CreatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &a, nil
}

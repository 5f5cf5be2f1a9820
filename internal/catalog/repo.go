// Package catalog is the read side of the product catalog plus the
// transaction-scoped stock mutations used during checkout. Catalog authoring
// (create/update/delete) belongs to the admin surface, not to this core.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

type Reader interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, sku, description, price::text, stock, active, image_url, created_at, updated_at
		FROM products WHERE id=$1
	`, id).Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Price, &p.Stock, &p.Active, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT id, name, sku, description, price::text, stock, active, image_url, created_at, updated_at
		FROM products
		WHERE active AND ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Price, &p.Stock, &p.Active, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DecrementStockTx takes qty units off a product inside the caller's
// transaction. The decrement is conditional: if fewer than qty units remain
// the update matches no row and ErrInsufficientStock is returned, which must
// abort the whole transaction.
func DecrementStockTx(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestockTx returns qty units to a product inside the caller's transaction.
func RestockTx(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	_, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`, productID, qty)
	return err
}

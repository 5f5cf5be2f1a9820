package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps authenticated carts in Postgres. Rows are keyed by
// (owner_key, product_id) with a unique constraint, so AddItem can upsert.
type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Items(ctx context.Context, owner string) ([]LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, owner_key, product_id, quantity, created_at, updated_at
		FROM cart_items WHERE owner_key=$1
		ORDER BY created_at ASC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OwnerKey, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PGStore) AddItem(ctx context.Context, owner, productID string, qty int) (*LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var it LineItem
	err := s.db.QueryRow(ctx, `
		INSERT INTO cart_items (id, owner_key, product_id, quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		ON CONFLICT (owner_key, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, owner_key, product_id, quantity, created_at, updated_at
	`, uuid.NewString(), owner, productID, qty).Scan(
		&it.ID, &it.OwnerKey, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *PGStore) SetQuantity(ctx context.Context, owner, itemID string, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(ctx, owner, itemID)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
		UPDATE cart_items SET quantity=$3, updated_at=NOW()
		WHERE id=$1 AND owner_key=$2
	`, itemID, owner, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *PGStore) RemoveItem(ctx context.Context, owner, itemID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND owner_key=$2`, itemID, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *PGStore) Clear(ctx context.Context, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE owner_key=$1`, owner)
	return err
}

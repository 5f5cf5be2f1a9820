package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mercadito/storefront/internal/catalog"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Repository interface {
	// Create persists the order, its frozen items, the stock decrements and
	// the cart clear as one transaction. Nothing is visible on failure.
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	// UpdateStatus sets the new status, stamps shipped_at/delivered_at/
	// cancelled_at on entry to the matching status, and restocks the
	// purchased quantities on the first transition into CANCELLED.
	UpdateStatus(ctx context.Context, id string, st Status) (*Order, error)
	StatsByUser(ctx context.Context, userID string) (*Stats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderColumns = `id, number, user_id, address_id, payment_method, status,
	subtotal::text, shipping_cost::text, total::text, notes,
	created_at, updated_at, shipped_at, delivered_at, cancelled_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.Number, &o.UserID, &o.AddressID, &o.PaymentMethod, &o.Status,
		&o.Subtotal, &o.ShippingCost, &o.Total, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt)
}

func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO orders (id, number, user_id, address_id, payment_method, status,
                        subtotal, shipping_cost, total, notes, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
  `, o.ID, o.Number, o.UserID, o.AddressID, o.PaymentMethod, o.Status,
		o.Subtotal, o.ShippingCost, o.Total, o.Notes); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, product_id, name, sku, unit_price, quantity)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, it.ID, o.ID, it.ProductID, it.Name, it.SKU, it.UnitPrice, it.Quantity); err != nil {
			return err
		}
		if err := catalog.DecrementStockTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}

	// Empty the source cart in the same transaction so a failed checkout
	// leaves the cart untouched.
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE owner_key=$1`, o.UserID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	var o Order
	if err := scanOrder(r.db.QueryRow(ctx, `
    SELECT `+orderColumns+` FROM orders WHERE id=$1
  `, id), &o); err != nil {
		return nil, nil, ErrNotFound
	}
	items, err := r.GetItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &o, items, nil
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, product_id, name, sku, unit_price::text, quantity
    FROM order_items
    WHERE order_id = $1
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.SKU, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
    SELECT `+orderColumns+` FROM orders WHERE user_id=$1
    ORDER BY created_at DESC LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, st Status) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// cancelled_at is stamped once and never cleared, so it doubles as the
	// restocked-already marker: an order bounced out of CANCELLED and back
	// must not restock a second time.
	var restocked bool
	if err := tx.QueryRow(ctx, `SELECT cancelled_at IS NOT NULL FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&restocked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Entering SHIPPED/DELIVERED/CANCELLED stamps the matching timestamp;
	// moving elsewhere never clears one already set.
	var o Order
	if err := scanOrder(tx.QueryRow(ctx, `
    UPDATE orders
    SET status = $2,
        updated_at = NOW(),
        shipped_at   = CASE WHEN $2 = 'SHIPPED'   THEN NOW() ELSE shipped_at   END,
        delivered_at = CASE WHEN $2 = 'DELIVERED' THEN NOW() ELSE delivered_at END,
        cancelled_at = CASE WHEN $2 = 'CANCELLED' THEN NOW() ELSE cancelled_at END
    WHERE id = $1
    RETURNING `+orderColumns+`
  `, id, st), &o); err != nil {
		return nil, err
	}

	// First cancellation returns the purchased quantities to stock.
	if st == StatusCancelled && !restocked {
		rows, err := tx.Query(ctx, `SELECT product_id, quantity FROM order_items WHERE order_id=$1`, id)
		if err != nil {
			return nil, err
		}
		type line struct {
			productID string
			qty       int
		}
		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.productID, &l.qty); err != nil {
				rows.Close()
				return nil, err
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		for _, l := range lines {
			if err := catalog.RestockTx(ctx, tx, l.productID, l.qty); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) StatsByUser(ctx context.Context, userID string) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var st Stats
	err := r.db.QueryRow(ctx, `
    SELECT COUNT(*),
           COALESCE(SUM(total) FILTER (WHERE status <> 'CANCELLED'), 0)::text,
           COUNT(*) FILTER (WHERE status IN ('PENDING','CONFIRMED','PROCESSING','SHIPPED'))
    FROM orders WHERE user_id=$1
  `, userID).Scan(&st.TotalOrders, &st.TotalSpent, &st.PendingOrders)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hausmart/storefront/internal/domain/cart"
)

const (
	addCartItemSQL = `INSERT INTO cart_items (member_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id, item_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	removeCartItemSQL = `DELETE FROM cart_items WHERE member_id = $1 AND item_id = $2`

	cartLinesSQL = `SELECT c.item_id, i.sku, i.name, c.quantity,
		COALESCE(p.retail_price, 0), p.item_id IS NOT NULL
		FROM cart_items c
		JOIN items i ON i.id = c.item_id
		LEFT JOIN item_country_prices p ON p.item_id = c.item_id AND p.country = $2
		WHERE c.member_id = $1
		ORDER BY c.item_id`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Add inserts the item into the member's cart, accumulating quantity when the
// item is already there.
func (r *CartRepository) Add(ctx context.Context, memberID, itemID int64, quantity int) error {
	if _, err := r.pool.Exec(ctx, addCartItemSQL, memberID, itemID, quantity); err != nil {
		return fmt.Errorf("adding cart item %d for member %d: %w", itemID, memberID, err)
	}
	return nil
}

// Remove deletes the item from the member's cart. Removing an absent item is
// a no-op.
func (r *CartRepository) Remove(ctx context.Context, memberID, itemID int64) error {
	if _, err := r.pool.Exec(ctx, removeCartItemSQL, memberID, itemID); err != nil {
		return fmt.Errorf("removing cart item %d for member %d: %w", itemID, memberID, err)
	}
	return nil
}

// Lines returns the member's cart with prices resolved for the country. Items
// without a price for that country come back with Priced = false.
func (r *CartRepository) Lines(ctx context.Context, memberID int64, country string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, cartLinesSQL, memberID, country)
	if err != nil {
		return nil, fmt.Errorf("listing cart for member %d: %w", memberID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Line, error) {
		var l cart.Line
		err := row.Scan(&l.ItemID, &l.SKU, &l.Name, &l.Quantity, &l.UnitPrice, &l.Priced)
		return l, err
	})
}

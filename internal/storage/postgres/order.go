package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hausmart/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(member_id, delivery_name, delivery_contact, delivery_address, delivery_postal,
		 promo_code, discount, total, payment_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, placed_at`

	createOrderItemSQL = `INSERT INTO order_items
		(order_id, item_id, sku, name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	clearCartSQL = `DELETE FROM cart_items WHERE member_id = $1`

	ordersByMemberSQL = `SELECT id, member_id,
		delivery_name, delivery_contact, delivery_address, delivery_postal,
		promo_code, discount, total, payment_ref, placed_at
		FROM orders WHERE member_id = $1
		ORDER BY placed_at DESC, id DESC`

	orderLinesSQL = `SELECT order_id, item_id, sku, name, quantity, unit_price
		FROM order_items WHERE order_id = ANY($1)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order with its lines and clears the member's cart in a
// single transaction. The database-assigned id and placement time are written
// back into o.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	err = tx.QueryRow(ctx, createOrderSQL,
		o.MemberID, o.Delivery.Name, o.Delivery.Contact, o.Delivery.Address, o.Delivery.PostalCode,
		o.PromoCode, o.Discount, o.Total, o.PaymentRef,
	).Scan(&o.ID, &o.PlacedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, createOrderItemSQL,
			o.ID, l.ItemID, l.SKU, l.Name, l.Quantity, l.UnitPrice,
		); err != nil {
			return fmt.Errorf("inserting order line %q: %w", l.SKU, err)
		}
	}

	if _, err := tx.Exec(ctx, clearCartSQL, o.MemberID); err != nil {
		return fmt.Errorf("clearing cart for member %d: %w", o.MemberID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order tx: %w", err)
	}
	return nil
}

// ListByMember returns the member's orders, most recent first, with lines.
func (r *OrderRepository) ListByMember(ctx context.Context, memberID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, ordersByMemberSQL, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for member %d: %w", memberID, err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.MemberID,
			&o.Delivery.Name, &o.Delivery.Contact, &o.Delivery.Address, &o.Delivery.PostalCode,
			&o.PromoCode, &o.Discount, &o.Total, &o.PaymentRef, &o.PlacedAt,
		)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing orders for member %d: %w", memberID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	lineRows, err := r.pool.Query(ctx, orderLinesSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			orderID int64
			l       order.Line
		)
		if err := lineRows.Scan(&orderID, &l.ItemID, &l.SKU, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning order line: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("listing order lines: %w", err)
	}
	return orders, nil
}

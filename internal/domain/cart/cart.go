// Package cart holds the per-member persistent shopping cart.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Line is one cart entry with the item's price resolved for the member's
// country. A line whose item has no price for that country is not
// purchasable there.
type Line struct {
	ItemID    int64
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Priced    bool
}

// Subtotal returns price * quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Repository defines persistence operations for carts. Add accumulates
// quantity when the item is already in the cart. The cart is cleared inside
// the order-placement transaction, not through this interface.
type Repository interface {
	Add(ctx context.Context, memberID, itemID int64, quantity int) error
	Remove(ctx context.Context, memberID, itemID int64) error
	Lines(ctx context.Context, memberID int64, country string) ([]Line, error)
}

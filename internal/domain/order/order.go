// Package order implements checkout and the per-member sales-history read
// model. A checkout attempt moves through cart review, delivery entry, and
// payment; only a confirmed payment produces a persisted order.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// ItemUnavailableError indicates a cart item that can no longer be purchased
// in the member's country (no resolvable retail price).
type ItemUnavailableError struct {
	SKU string
}

func (e *ItemUnavailableError) Error() string {
	return "item " + e.SKU + " is no longer available"
}

// UnsupportedCountryError indicates a checkout country with no charge
// currency on file. Checkout refuses rather than charging a guessed currency.
type UnsupportedCountryError struct {
	Country string
}

func (e *UnsupportedCountryError) Error() string {
	return "no charge currency for country " + e.Country
}

// DeliveryError indicates a malformed or missing delivery field. Message is
// rendered to the user verbatim.
type DeliveryError struct {
	Message string
}

func (e *DeliveryError) Error() string {
	return e.Message
}

// Delivery is the shipping snapshot captured at checkout. It is stored with
// the order and never read back from the member's live profile.
type Delivery struct {
	Name       string
	Contact    string
	Address    string
	PostalCode string
}

// Line is one purchased item. UnitPrice is frozen at checkout time; later
// catalog price changes never affect it.
type Line struct {
	ItemID    int64
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Order is a confirmed purchase attached to a member's sales history.
type Order struct {
	ID         int64
	MemberID   int64
	Delivery   Delivery
	Lines      []Line
	PromoCode  string
	Discount   decimal.Decimal
	Total      decimal.Decimal
	PaymentRef string
	// PlacedAt is assigned by the database at insert time, in UTC.
	PlacedAt time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order and its lines and clears the member's cart
	// in a single transaction. It fills in the database-assigned ID and
	// PlacedAt on success.
	Create(ctx context.Context, o *Order) error

	// ListByMember returns the member's orders, most recent first, each with
	// its lines populated.
	ListByMember(ctx context.Context, memberID int64) ([]Order, error)
}

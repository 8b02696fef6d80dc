// Package promo holds promo-code discount rules applied at checkout.
package promo

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promo-code discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountFreeLowest removes the cost of the cheapest item in the cart.
	DiscountFreeLowest DiscountType = "free_lowest"
)

// ErrInvalidCode is returned when a promo code is not found or the cart does
// not satisfy the code's minimum item requirement.
var ErrInvalidCode = errors.New("invalid promo code")

// Rule defines a promo code's discount behaviour and eligibility constraints.
type Rule struct {
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	// MinItems is the minimum total unit count across the cart, 0 for none.
	MinItems int
	// MinSpend is the minimum cart subtotal, zero for none.
	MinSpend    decimal.Decimal
	Description string
}

// Discount holds the computed discount amount and a human-readable description.
type Discount struct {
	Amount      decimal.Decimal
	Description string
}

// Item represents a cart line for discount calculation purposes.
type Item struct {
	ItemID   int64
	Price    decimal.Decimal
	Quantity int
}

// Repository provides lookup of promo rules by their code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}

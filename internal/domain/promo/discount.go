package promo

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount computes the discount this rule grants for the given cart items.
// It returns ErrInvalidCode when the cart does not meet the rule's minimum
// item count or minimum spend.
func (r *Rule) Discount(items []Item) (Discount, error) {
	subtotal, quantity := tally(items)
	if err := r.eligible(subtotal, quantity); err != nil {
		return Discount{}, err
	}

	var amount decimal.Decimal
	switch r.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(r.Value).Div(hundred)
	case DiscountFixed:
		amount = r.Value
	case DiscountFreeLowest:
		amount = cheapestUnit(items)
	default:
		return Discount{}, errors.Errorf("unsupported discount type: %q", r.DiscountType)
	}

	return Discount{
		Amount:      clamp(amount, subtotal),
		Description: r.Description,
	}, nil
}

func (r *Rule) eligible(subtotal decimal.Decimal, quantity int) error {
	if r.MinItems > 0 && quantity < r.MinItems {
		return ErrInvalidCode
	}
	if r.MinSpend.IsPositive() && subtotal.LessThan(r.MinSpend) {
		return ErrInvalidCode
	}
	return nil
}

// tally returns the cart subtotal and total unit count.
func tally(items []Item) (decimal.Decimal, int) {
	subtotal := decimal.Zero
	quantity := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		quantity += item.Quantity
	}
	return subtotal, quantity
}

// cheapestUnit returns the lowest unit price in the cart, zero when empty.
func cheapestUnit(items []Item) decimal.Decimal {
	if len(items) == 0 {
		return decimal.Zero
	}
	lowest := items[0].Price
	for _, item := range items[1:] {
		if item.Price.LessThan(lowest) {
			lowest = item.Price
		}
	}
	return lowest
}

// clamp bounds the discount to [0, subtotal] and rounds to cents. A discount
// can never push the order total negative.
func clamp(amount, subtotal decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, subtotal).Round(2)
}

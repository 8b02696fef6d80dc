package order

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hausmart/storefront/internal/domain/cart"
	"github.com/hausmart/storefront/internal/domain/promo"
	"github.com/hausmart/storefront/internal/payment"
)

var postalPattern = regexp.MustCompile(`^\d{6}$`)

// currencies maps a storefront country code to its charge currency. A
// country added to item_country_prices must get an entry here before
// checkout will accept it.
var currencies = map[string]string{
	"SG": "sgd",
	"MY": "myr",
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	MemberID     int64
	Country      string
	Delivery     Delivery
	PromoCode    string
	PaymentToken string
}

// Service encapsulates checkout business logic.
type Service struct {
	carts    cart.Repository
	promos   promo.Validator
	orders   Repository
	payments payment.Provider
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	carts cart.Repository,
	promos promo.Validator,
	orders Repository,
	payments payment.Provider,
) *Service {
	return &Service{
		carts:    carts,
		promos:   promos,
		orders:   orders,
		payments: payments,
	}
}

// PlaceOrder runs one checkout attempt: it validates the cart and delivery
// details, prices the cart with an optional promo code, charges the payment
// provider, and on success persists the order (which also clears the cart)
// with a database-assigned id and timestamp.
//
// A declined payment returns payment.ErrDeclined and persists nothing.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	currency, err := currencyFor(req.Country)
	if err != nil {
		return nil, err
	}

	lines, err := s.carts.Lines(ctx, req.MemberID, req.Country)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, l := range lines {
		if !l.Priced {
			return nil, &ItemUnavailableError{SKU: l.SKU}
		}
	}

	if err := validateDelivery(req.Delivery); err != nil {
		return nil, err
	}

	// Price the cart at current resolved prices.
	promoItems := make([]promo.Item, len(lines))
	subtotal := decimal.Zero
	for i, l := range lines {
		promoItems[i] = promo.Item{
			ItemID:   l.ItemID,
			Price:    l.UnitPrice,
			Quantity: l.Quantity,
		}
		subtotal = subtotal.Add(l.Subtotal())
	}

	discount := decimal.Zero
	code := strings.TrimSpace(req.PromoCode)
	if code != "" {
		d, err := s.promos.Validate(ctx, code, promoItems)
		if err != nil {
			return nil, errors.Wrap(err, "validate promo code")
		}
		discount = d.Amount
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)
	discount = discount.Round(2)

	ch, err := s.payments.Charge(ctx, payment.ChargeRequest{
		Amount:         total,
		Currency:       currency,
		Token:          req.PaymentToken,
		IdempotencyKey: uuid.New().String(),
	})
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			return nil, payment.ErrDeclined
		}
		return nil, errors.Wrap(err, "charge payment")
	}

	orderLines := make([]Line, len(lines))
	for i, l := range lines {
		orderLines[i] = Line{
			ItemID:    l.ItemID,
			SKU:       l.SKU,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	o := &Order{
		MemberID:   req.MemberID,
		Delivery:   req.Delivery,
		Lines:      orderLines,
		PromoCode:  code,
		Discount:   discount,
		Total:      total,
		PaymentRef: ch.Ref,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// SalesHistory returns the member's confirmed orders, most recent first.
// An empty slice means the member has no orders yet.
func (s *Service) SalesHistory(ctx context.Context, memberID int64) ([]Order, error) {
	orders, err := s.orders.ListByMember(ctx, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

func validateDelivery(d Delivery) error {
	if strings.TrimSpace(d.Name) == "" {
		return &DeliveryError{Message: "Delivery name is required"}
	}
	if strings.TrimSpace(d.Contact) == "" {
		return &DeliveryError{Message: "Delivery contact is required"}
	}
	if strings.TrimSpace(d.Address) == "" {
		return &DeliveryError{Message: "Delivery address is required"}
	}
	if !postalPattern.MatchString(d.PostalCode) {
		return &DeliveryError{Message: "Postal code must be 6 digits"}
	}
	return nil
}

func currencyFor(country string) (string, error) {
	c, ok := currencies[country]
	if !ok {
		return "", &UnsupportedCountryError{Country: country}
	}
	return c, nil
}

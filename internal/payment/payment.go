// Package payment abstracts the external card-payment gateway used at
// checkout. The hosted card-entry form produces an opaque token; this
// package only ever sees the token, never card data.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrDeclined is returned when the gateway rejects the charge. A declined
// charge is terminal for that checkout attempt and must persist nothing.
var ErrDeclined = errors.New("payment declined")

// ChargeRequest describes a single charge attempt.
type ChargeRequest struct {
	// Amount is the charge total in major currency units.
	Amount   decimal.Decimal
	Currency string
	// Token is the gateway token produced by the hosted card-entry form.
	Token string
	// IdempotencyKey deduplicates retried requests on the gateway side.
	IdempotencyKey string
}

// Charge is the gateway's record of a successful charge.
type Charge struct {
	// Ref is the gateway-assigned transaction reference.
	Ref    string
	Status string
}

// Provider submits charges to the payment gateway.
type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

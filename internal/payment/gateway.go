package payment

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-resty/resty/v2"
)

// GatewayConfig configures the HTTP payment gateway client.
type GatewayConfig struct {
	// BaseURL is the gateway API root, e.g. https://api.stripe.com.
	BaseURL string
	// SecretKey authenticates the merchant account.
	SecretKey string
	Timeout   time.Duration
}

// Gateway is a Provider backed by a Stripe-style HTTP charges API.
type Gateway struct {
	client *resty.Client
}

var _ Provider = (*Gateway)(nil)

// NewGateway creates a Gateway client for the configured payment API.
func NewGateway(cfg GatewayConfig) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetBasicAuth(cfg.SecretKey, "").
		SetHeader("User-Agent", "hausmart-storefront/1.0")

	return &Gateway{client: client}
}

// chargeResponse is the subset of the gateway's charge object we consume.
type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Charge submits a charge for the tokenized card. The gateway expects the
// amount in the currency's smallest unit, so major units are shifted by two
// decimal places before sending.
func (g *Gateway) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	var body chargeResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", req.IdempotencyKey).
		SetFormData(map[string]string{
			"amount":   req.Amount.Shift(2).Round(0).String(),
			"currency": req.Currency,
			"source":   req.Token,
		}).
		SetResult(&body).
		SetError(&body).
		Post("/v1/charges")
	if err != nil {
		return nil, errors.Wrap(err, "submit charge")
	}

	switch {
	case resp.StatusCode() == http.StatusPaymentRequired:
		return nil, ErrDeclined
	case resp.IsError():
		if body.Error.Code == "card_declined" {
			return nil, ErrDeclined
		}
		return nil, errors.Errorf("gateway error: status %d: %s", resp.StatusCode(), body.Error.Message)
	}

	if body.Status != "succeeded" {
		return nil, ErrDeclined
	}
	return &Charge{Ref: body.ID, Status: body.Status}, nil
}

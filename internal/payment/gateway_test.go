package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() ChargeRequest {
	return ChargeRequest{
		Amount:         decimal.RequireFromString("89.00"),
		Currency:       "sgd",
		Token:          "tok_visa",
		IdempotencyKey: "idem-1",
	}
}

func TestGateway_ChargeSucceeded(t *testing.T) {
	var gotAmount, gotIdem string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotAmount = r.PostFormValue("amount")
		gotIdem = r.Header.Get("Idempotency-Key")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ch_123","status":"succeeded"}`))
	}))
	defer srv.Close()

	g := NewGateway(GatewayConfig{BaseURL: srv.URL, SecretKey: "sk_test"})

	ch, err := g.Charge(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "ch_123", ch.Ref)
	assert.Equal(t, "8900", gotAmount, "amount sent in smallest currency unit")
	assert.Equal(t, "idem-1", gotIdem)
}

func TestGateway_ChargeDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	g := NewGateway(GatewayConfig{BaseURL: srv.URL, SecretKey: "sk_test"})

	_, err := g.Charge(context.Background(), testRequest())
	require.ErrorIs(t, err, ErrDeclined)
}

func TestGateway_CardDeclinedOnBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"card_declined","message":"declined"}}`))
	}))
	defer srv.Close()

	g := NewGateway(GatewayConfig{BaseURL: srv.URL, SecretKey: "sk_test"})

	_, err := g.Charge(context.Background(), testRequest())
	require.ErrorIs(t, err, ErrDeclined)
}

func TestGateway_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	g := NewGateway(GatewayConfig{BaseURL: srv.URL, SecretKey: "sk_test"})

	_, err := g.Charge(context.Background(), testRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeclined)
	assert.Contains(t, err.Error(), "boom")
}

func TestGateway_UnexpectedStatusIsDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ch_9","status":"pending"}`))
	}))
	defer srv.Close()

	g := NewGateway(GatewayConfig{BaseURL: srv.URL, SecretKey: "sk_test"})

	_, err := g.Charge(context.Background(), testRequest())
	require.ErrorIs(t, err, ErrDeclined)
}

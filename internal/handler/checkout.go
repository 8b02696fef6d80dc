package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/hausmart/storefront/internal/domain/order"
	"github.com/hausmart/storefront/internal/domain/promo"
	"github.com/hausmart/storefront/internal/payment"
)

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.requireMemberForm(w, r)
	if !ok {
		return
	}

	req := order.PlaceOrderRequest{
		MemberID: memberID,
		Country:  h.country(r),
		Delivery: order.Delivery{
			Name:       r.PostFormValue("deliveryName"),
			Contact:    r.PostFormValue("deliveryContact"),
			Address:    r.PostFormValue("deliveryAddress"),
			PostalCode: r.PostFormValue("deliveryPostal"),
		},
		PromoCode:    r.PostFormValue("promoCode"),
		PaymentToken: r.PostFormValue("paymentToken"),
	}

	o, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		redirectMsg(w, r, "checkout.html", "errMsg", checkoutMessage(r, err))
		return
	}

	redirectMsg(w, r, "confirmation.html", "goodMsg",
		"Payment Successful! Order #"+strconv.FormatInt(o.ID, 10))
}

// checkoutMessage maps a checkout failure to the text shown to the user.
// Anything that is not a known client-side failure logs and reads as a
// generic error.
func checkoutMessage(r *http.Request, err error) string {
	var (
		deliveryErr    *order.DeliveryError
		unavailableErr *order.ItemUnavailableError
		countryErr     *order.UnsupportedCountryError
	)
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return "Your cart is empty"
	case errors.As(err, &deliveryErr):
		return deliveryErr.Message
	case errors.As(err, &unavailableErr):
		return unavailableErr.Error()
	case errors.As(err, &countryErr):
		return "We do not deliver to your country yet"
	case errors.Is(err, promo.ErrInvalidCode):
		return "Invalid promo code"
	case errors.Is(err, payment.ErrDeclined):
		return "Payment declined"
	default:
		zctx.From(r.Context()).Error("checkout failed", zap.Error(err))
		return "Something went wrong"
	}
}

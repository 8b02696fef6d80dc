package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/hausmart/storefront/internal/domain/order"
)

func (h *Handler) salesHistory(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.requireMemberJSON(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.SalesHistory(r.Context(), memberID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range orders {
				h.encodeOrder(e, &orders[i])
			}
		})
	})
}

func (h *Handler) encodeOrder(e *jx.Encoder, o *order.Order) {
	stamp := o.Stamp(h.loc)
	e.Obj(func(e *jx.Encoder) {
		e.Field("order_no", func(e *jx.Encoder) { e.Str("Order #" + strconv.FormatInt(o.ID, 10)) })
		e.Field("delivery_name", func(e *jx.Encoder) { e.Str(o.Delivery.Name) })
		e.Field("delivery_contact", func(e *jx.Encoder) { e.Str(o.Delivery.Contact) })
		e.Field("delivery_address", func(e *jx.Encoder) { e.Str(o.Delivery.Address) })
		e.Field("delivery_postal", func(e *jx.Encoder) { e.Str(o.Delivery.PostalCode) })
		e.Field("promo_code", func(e *jx.Encoder) { e.Str(o.PromoCode) })
		e.Field("discount", func(e *jx.Encoder) { encodeDecimal(e, o.Discount) })
		e.Field("total", func(e *jx.Encoder) { encodeDecimal(e, o.Total) })
		e.Field("placed_weekday", func(e *jx.Encoder) { e.Str(stamp.Weekday) })
		e.Field("placed_date", func(e *jx.Encoder) { e.Str(stamp.Date) })
		e.Field("placed_time", func(e *jx.Encoder) { e.Str(stamp.Time) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range o.Lines {
					encodeOrderLine(e, l)
				}
			})
		})
	})
}

func encodeOrderLine(e *jx.Encoder, l order.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("sku", func(e *jx.Encoder) { e.Str(l.SKU) })
		e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("unit_price", func(e *jx.Encoder) { encodeDecimal(e, l.UnitPrice) })
	})
}

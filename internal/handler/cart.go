package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hausmart/storefront/internal/domain/cart"
	"github.com/hausmart/storefront/internal/domain/catalog"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.requireMemberJSON(w, r)
	if !ok {
		return
	}

	lines, err := h.carts.Lines(r.Context(), memberID, h.country(r))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error", err)
		return
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Priced {
			subtotal = subtotal.Add(l.Subtotal())
		}
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, l := range lines {
						encodeCartLine(e, l)
					}
				})
			})
			e.Field("subtotal", func(e *jx.Encoder) { encodeDecimal(e, subtotal) })
		})
	})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.requireMemberForm(w, r)
	if !ok {
		return
	}

	sku := r.PostFormValue("sku")
	quantity := 1
	if v := r.PostFormValue("quantity"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil || q < 1 {
			redirectMsg(w, r, "cart.html", "errMsg", "Invalid quantity")
			return
		}
		quantity = q
	}

	item, err := h.catalog.ItemBySKU(r.Context(), sku, h.country(r))
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			redirectMsg(w, r, "cart.html", "errMsg", "Item not found")
			return
		}
		zctx.From(r.Context()).Error("resolving item", zap.Error(err))
		redirectMsg(w, r, "cart.html", "errMsg", "Something went wrong")
		return
	}

	if err := h.carts.Add(r.Context(), memberID, item.ID, quantity); err != nil {
		zctx.From(r.Context()).Error("adding cart item", zap.Error(err))
		redirectMsg(w, r, "cart.html", "errMsg", "Something went wrong")
		return
	}
	redirectMsg(w, r, "cart.html", "goodMsg", "Added to cart!")
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.requireMemberForm(w, r)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(r.PostFormValue("itemId"), 10, 64)
	if err != nil {
		redirectMsg(w, r, "cart.html", "errMsg", "Invalid item")
		return
	}

	if err := h.carts.Remove(r.Context(), memberID, itemID); err != nil {
		zctx.From(r.Context()).Error("removing cart item", zap.Error(err))
		redirectMsg(w, r, "cart.html", "errMsg", "Something went wrong")
		return
	}
	redirectMsg(w, r, "cart.html", "goodMsg", "Removed from cart!")
}

func encodeCartLine(e *jx.Encoder, l cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("item_id", func(e *jx.Encoder) { e.Int64(l.ItemID) })
		e.Field("sku", func(e *jx.Encoder) { e.Str(l.SKU) })
		e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("unit_price", func(e *jx.Encoder) { encodeDecimal(e, l.UnitPrice) })
		e.Field("available", func(e *jx.Encoder) { e.Bool(l.Priced) })
	})
}

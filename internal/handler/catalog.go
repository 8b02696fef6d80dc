package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/hausmart/storefront/internal/domain/catalog"
)

func (h *Handler) listShowrooms(w http.ResponseWriter, r *http.Request) {
	showrooms, err := h.catalog.ListShowrooms(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, s := range showrooms {
				encodeShowroom(e, s)
			}
		})
	})
}

func (h *Handler) showroomHotspots(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid showroom id", nil)
		return
	}

	hotspots, err := h.catalog.ShowroomHotspots(r.Context(), id, h.country(r))
	if err != nil {
		if errors.Is(err, catalog.ErrShowroomNotFound) {
			writeError(w, r, http.StatusNotFound, "showroom not found", nil)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, hs := range hotspots {
				encodeHotspot(e, hs)
			}
		})
	})
}

func (h *Handler) listPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.catalog.ActivePromotions(r.Context(), h.country(r))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range promos {
				encodePromotion(e, p)
			}
		})
	})
}

func encodeShowroom(e *jx.Encoder, s catalog.Showroom) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(s.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
		e.Field("image_url", func(e *jx.Encoder) { e.Str(s.ImageURL) })
	})
}

func encodeHotspot(e *jx.Encoder, h catalog.Hotspot) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("x_pos", func(e *jx.Encoder) { encodeDecimal(e, h.XPos) })
		e.Field("y_pos", func(e *jx.Encoder) { encodeDecimal(e, h.YPos) })
		e.Field("item", func(e *jx.Encoder) { encodePricedItem(e, h.Item) })
	})
}

func encodePricedItem(e *jx.Encoder, item catalog.PricedItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("sku", func(e *jx.Encoder) { e.Str(item.SKU) })
		e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(item.Description) })
		e.Field("height", func(e *jx.Encoder) { encodeDecimal(e, item.Height) })
		e.Field("width", func(e *jx.Encoder) { encodeDecimal(e, item.Width) })
		e.Field("length", func(e *jx.Encoder) { encodeDecimal(e, item.Length) })
		e.Field("retail_price", func(e *jx.Encoder) { encodeDecimal(e, item.RetailPrice) })
	})
}

func encodePromotion(e *jx.Encoder, p catalog.Promotion) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("sku", func(e *jx.Encoder) { e.Str(p.SKU) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("discount_rate", func(e *jx.Encoder) { encodeDecimal(e, p.DiscountRate) })
		e.Field("image_url", func(e *jx.Encoder) { e.Str(p.ImageURL) })
		e.Field("start_date", func(e *jx.Encoder) { e.Str(p.StartDate.Format("2006-01-02")) })
		e.Field("end_date", func(e *jx.Encoder) { e.Str(p.EndDate.Format("2006-01-02")) })
	})
}

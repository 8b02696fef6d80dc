// Package handler exposes the storefront over HTTP: jx-encoded JSON read
// APIs under /api, and form-post endpoints that answer with a 303 redirect
// carrying the outcome message in the query string.
package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/hausmart/storefront/internal/domain/cart"
	"github.com/hausmart/storefront/internal/domain/catalog"
	"github.com/hausmart/storefront/internal/domain/member"
	"github.com/hausmart/storefront/internal/domain/order"
)

// Handler carries the service dependencies of the HTTP surface.
type Handler struct {
	catalog  catalog.Repository
	members  *member.Service
	carts    cart.Repository
	orders   *order.Service
	sessions *sessions.CookieStore
	loc      *time.Location
}

// New creates the HTTP handler. loc is the timezone used to render
// sales-history timestamps.
func New(
	catalogRepo catalog.Repository,
	members *member.Service,
	carts cart.Repository,
	orders *order.Service,
	sessionStore *sessions.CookieStore,
	loc *time.Location,
) *Handler {
	return &Handler{
		catalog:  catalogRepo,
		members:  members,
		carts:    carts,
		orders:   orders,
		sessions: sessionStore,
		loc:      loc,
	}
}

// RegisterRoutes attaches all storefront routes to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/showrooms", h.listShowrooms)
	mux.HandleFunc("GET /api/showroom/{id}", h.showroomHotspots)
	mux.HandleFunc("GET /api/promotions", h.listPromotions)
	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("GET /api/sales-history", h.salesHistory)

	mux.HandleFunc("POST /member/login", h.login)
	mux.HandleFunc("POST /member/logout", h.logout)
	mux.HandleFunc("POST /member/register", h.register)
	mux.HandleFunc("POST /member/activate", h.activate)
	mux.HandleFunc("POST /member/profile", h.updateProfile)
	mux.HandleFunc("POST /member/password", h.changePassword)

	mux.HandleFunc("POST /cart/add", h.addToCart)
	mux.HandleFunc("POST /cart/remove", h.removeFromCart)

	mux.HandleFunc("POST /checkout", h.checkout)
}

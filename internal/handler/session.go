package handler

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "hausmart-session"

	sessionKeyMemberID = "member_id"
	sessionKeyCountry  = "country"

	// defaultCountry is the price-resolution country for anonymous visitors
	// and members without one on file.
	defaultCountry = "SG"
)

func (h *Handler) session(r *http.Request) *sessions.Session {
	// Get only errs on a corrupt cookie; it still returns a usable session.
	s, _ := h.sessions.Get(r, sessionName)
	return s
}

// memberID returns the logged-in member's id, or false for anonymous
// requests.
func (h *Handler) memberID(r *http.Request) (int64, bool) {
	id, ok := h.session(r).Values[sessionKeyMemberID].(int64)
	return id, ok
}

// country resolves the price country: an explicit ?country= or form value
// wins, then the session, then the default.
func (h *Handler) country(r *http.Request) string {
	if c := r.FormValue("country"); c != "" {
		return c
	}
	if c, ok := h.session(r).Values[sessionKeyCountry].(string); ok && c != "" {
		return c
	}
	return defaultCountry
}

// requireMemberJSON guards the JSON APIs. It answers 401 itself and returns
// false when there is no session.
func (h *Handler) requireMemberJSON(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := h.memberID(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not logged in", nil)
		return 0, false
	}
	return id, true
}

// requireMemberForm guards the form-post endpoints. It redirects to the login
// page and returns false when there is no session.
func (h *Handler) requireMemberForm(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := h.memberID(r)
	if !ok {
		redirectMsg(w, r, "memberLogin.html", "errMsg", "Please log in")
		return 0, false
	}
	return id, true
}

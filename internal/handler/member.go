package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hausmart/storefront/internal/domain/member"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	m, err := h.members.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, member.ErrLoginFailed) {
			redirectMsg(w, r, "memberLogin.html", "errMsg", "Login fail")
			return
		}
		zctx.From(r.Context()).Error("login failed", zap.Error(err))
		redirectMsg(w, r, "memberLogin.html", "errMsg", "Something went wrong")
		return
	}

	s := h.session(r)
	s.Values[sessionKeyMemberID] = m.ID
	if m.Country != "" {
		s.Values[sessionKeyCountry] = m.Country
	}
	if err := s.Save(r, w); err != nil {
		zctx.From(r.Context()).Error("saving session", zap.Error(err))
		redirectMsg(w, r, "memberLogin.html", "errMsg", "Something went wrong")
		return
	}
	redirectMsg(w, r, "memberProfile.html", "", "")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Options.MaxAge = -1
	if err := s.Save(r, w); err != nil {
		zctx.From(r.Context()).Error("clearing session", zap.Error(err))
	}
	redirectMsg(w, r, "memberLogin.html", "", "")
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	profile, err := parseProfileForm(r)
	if err != nil {
		redirectMsg(w, r, "memberRegister.html", "errMsg", err.Error())
		return
	}

	_, err = h.members.Register(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"), profile)
	if err != nil {
		var verr *member.ValidationError
		if errors.As(err, &verr) {
			redirectMsg(w, r, "memberRegister.html", "errMsg", verr.Message)
			return
		}
		zctx.From(r.Context()).Error("registering member", zap.Error(err))
		redirectMsg(w, r, "memberRegister.html", "errMsg", "Something went wrong")
		return
	}
	redirectMsg(w, r, "memberLogin.html", "goodMsg", "Registration successful! Please log in")
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	if err := h.members.Activate(r.Context(), r.PostFormValue("email")); err != nil {
		if errors.Is(err, member.ErrNotFound) {
			redirectMsg(w, r, "memberLogin.html", "errMsg", "Account not found")
			return
		}
		zctx.From(r.Context()).Error("activating member", zap.Error(err))
		redirectMsg(w, r, "memberLogin.html", "errMsg", "Something went wrong")
		return
	}
	redirectMsg(w, r, "memberLogin.html", "goodMsg", "Account activated! Please log in")
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireMemberForm(w, r)
	if !ok {
		return
	}

	profile, err := parseProfileForm(r)
	if err != nil {
		redirectMsg(w, r, "memberProfile.html", "errMsg", err.Error())
		return
	}

	if err := h.members.UpdateProfile(r.Context(), id, profile); err != nil {
		var verr *member.ValidationError
		if errors.As(err, &verr) {
			redirectMsg(w, r, "memberProfile.html", "errMsg", verr.Message)
			return
		}
		zctx.From(r.Context()).Error("updating profile", zap.Error(err))
		redirectMsg(w, r, "memberProfile.html", "errMsg", "Something went wrong")
		return
	}

	if profile.Country != "" {
		s := h.session(r)
		s.Values[sessionKeyCountry] = profile.Country
		if err := s.Save(r, w); err != nil {
			zctx.From(r.Context()).Error("saving session", zap.Error(err))
		}
	}
	redirectMsg(w, r, "memberProfile.html", "goodMsg", "Successfully Updated!")
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireMemberForm(w, r)
	if !ok {
		return
	}

	err := h.members.ChangePassword(r.Context(), id,
		r.PostFormValue("oldPassword"),
		r.PostFormValue("newPassword"),
		r.PostFormValue("confirmPassword"),
	)
	if err != nil {
		if msg, ok := passwordMessage(err); ok {
			redirectMsg(w, r, "memberProfile.html", "errMsg", msg)
			return
		}
		zctx.From(r.Context()).Error("changing password", zap.Error(err))
		redirectMsg(w, r, "memberProfile.html", "errMsg", "Something went wrong")
		return
	}
	redirectMsg(w, r, "memberProfile.html", "goodMsg", "Password Changed!")
}

// passwordMessage maps the password-rule sentinels to the exact text the
// user sees.
func passwordMessage(err error) (string, bool) {
	for _, sentinel := range []error{
		member.ErrPasswordFieldsMissing,
		member.ErrPasswordTooShort,
		member.ErrPasswordMismatch,
		member.ErrOldPasswordIncorrect,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

// parseProfileForm reads the editable profile fields from the posted form.
// The form always submits every field, so absent values come through blank.
func parseProfileForm(r *http.Request) (member.ProfileUpdate, error) {
	var upd member.ProfileUpdate

	upd.Name = r.PostFormValue("name")
	upd.Phone = r.PostFormValue("phone")
	upd.Country = r.PostFormValue("country")
	upd.Address = r.PostFormValue("address")
	upd.SecurityAnswer = r.PostFormValue("securityAnswer")
	upd.Consent = r.PostFormValue("consent") == "on" || r.PostFormValue("consent") == "true"

	if v := r.PostFormValue("securityQuestion"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return upd, &member.ValidationError{Message: "Invalid security question"}
		}
		upd.SecurityQuestion = q
	}
	if v := r.PostFormValue("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return upd, &member.ValidationError{Message: "Age must be a number"}
		}
		upd.Age = age
	}
	if v := r.PostFormValue("income"); v != "" {
		income, err := decimal.NewFromString(v)
		if err != nil {
			return upd, &member.ValidationError{Message: "Income must be a number"}
		}
		upd.Income = income
	}
	return upd, nil
}

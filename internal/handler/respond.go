package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// writeJSON renders the encoded body with the given status.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(e.Bytes()) //nolint:errcheck // best effort after headers are out
}

// writeError renders the {"code","message"} error body and logs server-side
// failures.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// redirectMsg answers a form post with a 303 to the page, attaching the
// outcome message as a query parameter. Pages are root-relative so the
// Location does not depend on which endpoint handled the post. The message
// text reaches the user verbatim, so callers must not rephrase it.
func redirectMsg(w http.ResponseWriter, r *http.Request, page, key, msg string) {
	target := "/" + page
	if msg != "" {
		target += "?" + key + "=" + escapeMessage(msg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// escapeMessage percent-encodes a query message. The storefront pages decode
// with decodeURIComponent, which leaves "+" intact, so spaces must be %20
// rather than url.QueryEscape's form encoding.
func escapeMessage(msg string) string {
	return strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

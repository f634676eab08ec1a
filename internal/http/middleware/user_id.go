package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// HeaderUserID is set by the gateway for authenticated traffic.
const HeaderUserID = "X-User-Id"

const ctxUserID ctxKey = "user_id"

// UserScope binds the {userId} path segment to the request context. When the
// gateway header is present it must name the same user, so one shopper can't
// read or confirm another's checkout.
func UserScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(chi.URLParam(r, "userId"))
		if uid == "" {
			writeJSONError(w, r, http.StatusBadRequest, "missing user id")
			return
		}
		if hdr := strings.TrimSpace(r.Header.Get(HeaderUserID)); hdr != "" && hdr != uid {
			writeJSONError(w, r, http.StatusForbidden, "user id does not match "+HeaderUserID)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:         msg,
		CorrelationID: GetCorrelationID(r.Context()),
	})
}

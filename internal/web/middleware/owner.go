package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/contactbook/internal/core"
)

// maxOwnerLen bounds the owner header so it cannot be used to bloat logs
// or index keys.
const maxOwnerLen = 128

// Owner stores the owner id carried in header on the request context. The
// header is set by the authenticating proxy in front of the API. Requests
// without a usable value are passed to onMissing and go no further.
func Owner(header string, onMissing http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := strings.TrimSpace(r.Header.Get(header))
			if owner == "" || len(owner) > maxOwnerLen {
				onMissing(w, r)
				return
			}
			recordOwner(r.Context(), owner)
			next.ServeHTTP(w, r.WithContext(core.ContextWithOwner(r.Context(), owner)))
		})
	}
}

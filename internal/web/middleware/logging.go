// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/contactbook/internal/logging"
)

// Logger writes one structured line per request once it completes.
//
// Log fields:
//   - method, path, status
//   - duration_ms: time spent in the handler chain
//   - ip: client address after TrustedRealIP
//   - owner_id: set when the Owner middleware accepted the request
//   - request_id: from chi's RequestID, via logging.FromContext
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		// Owner runs further down the chain; it reports back through the
		// holder so the access line can carry the owner id.
		holder := &ownerHolder{}
		r = r.WithContext(withOwnerHolder(r.Context(), holder))

		next.ServeHTTP(ww, r)

		logger := logging.FromContext(r.Context())
		if holder.owner != "" {
			logger = logger.With("owner_id", holder.owner)
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)
	})
}

type ownerHolder struct{ owner string }

type holderKey struct{}

func withOwnerHolder(ctx context.Context, h *ownerHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// recordOwner lets Owner report the accepted owner id to Logger.
func recordOwner(ctx context.Context, owner string) {
	if h, ok := ctx.Value(holderKey{}).(*ownerHolder); ok {
		h.owner = owner
	}
}

package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/contactbook/internal/core"
)

// ownerID returns the owner set by middleware.Owner. Routes under /api are
// only reachable through that middleware, so the value is always present.
func ownerID(r *http.Request) string {
	owner, _ := core.OwnerFromContext(r.Context())
	return owner
}

// clientIP strips the port from r.RemoteAddr, which TrustedRealIP may
// already have replaced with a bare address.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

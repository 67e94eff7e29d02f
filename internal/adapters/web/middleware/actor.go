package middleware

import (
	"net"
	"net/http"

	"github.com/lcalzada-xor/cveadvisor/internal/core/services/audit"
)

// APIActor is recorded as the actor of every admin API action.
const APIActor = "admin-api"

// AuditActor attaches the actor and client address used by the audit trail.
func AuditActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.WithActor(r.Context(), APIActor, clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

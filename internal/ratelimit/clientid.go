package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

const unknownClient = "unknown"

// ClientID derives the coarse, best-effort key used for login limiting:
// first X-Forwarded-For hop, then X-Real-IP, then the connection address.
// Headers are client-controlled, so this bounds casual abuse only.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return unknownClient
}

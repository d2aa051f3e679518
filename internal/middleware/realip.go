package middleware

import (
	"net"
	"net/http"
	"net/netip"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Forwarding headers read by chi's RealIP.
var forwardingHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

// TrustedRealIP rewrites RemoteAddr from forwarding headers (chi's RealIP)
// only when the direct peer is one of the trusted proxies. For any other
// peer the headers are dropped, so client IPs cannot be spoofed. An empty
// list trusts nobody.
func TrustedRealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		withRealIP := chimiddleware.RealIP(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peerTrusted(r.RemoteAddr, trusted) {
				withRealIP.ServeHTTP(w, r)
				return
			}
			for _, h := range forwardingHeaders {
				r.Header.Del(h)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func peerTrusted(remoteAddr string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

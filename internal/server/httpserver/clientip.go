package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const contextKeyClientIP contextKey = "client_ip"

// TrustedProxies is the set of peers whose forwarding headers are honored.
// A nil set trusts nobody, so the client IP is always the TCP peer.
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// ParseTrustedProxies parses IP addresses and CIDR prefixes. An empty list
// returns nil.
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	tp := &TrustedProxies{prefixes: make([]netip.Prefix, 0, len(entries))}
	for _, e := range entries {
		p, err := parseProxyEntry(e)
		if err != nil {
			return nil, err
		}
		tp.prefixes = append(tp.prefixes, p)
	}
	return tp, nil
}

func parseProxyEntry(e string) (netip.Prefix, error) {
	e = strings.TrimSpace(e)
	if strings.Contains(e, "/") {
		p, err := netip.ParsePrefix(e)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		return p.Masked(), nil
	}
	a, err := netip.ParseAddr(e)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("trusted proxy %q: %w", e, err)
	}
	a = a.Unmap()
	return netip.PrefixFrom(a, a.BitLen()), nil
}

// Contains reports whether ip belongs to a trusted proxy.
func (tp *TrustedProxies) Contains(ip string) bool {
	if tp == nil {
		return false
	}
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range tp.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the client that sent r.
//
// Forwarding headers are read only when the TCP peer is trusted.
// X-Forwarded-For is walked from the right and the first untrusted hop
// wins; a malformed hop stops the walk at the last valid one.
func (tp *TrustedProxies) ClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !tp.Contains(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			client = hop
			if !tp.Contains(hop) {
				break
			}
		}
		return client
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return peer
}

// ClientIP resolves the client address once per request for the access log
// and the rate limiter.
func ClientIP(tp *TrustedProxies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), contextKeyClientIP, tp.ClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getClientIP returns the address resolved by ClientIP, or the TCP peer
// when the middleware did not run.
func getClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(contextKeyClientIP).(string); ok {
		return ip
	}
	return remoteHost(r.RemoteAddr)
}

func remoteHost(addr string) string {
	// net.SplitHostPort handles IPv6 addresses like [::1]:8080
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

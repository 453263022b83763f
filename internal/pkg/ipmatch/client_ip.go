package ipmatch

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Proxy and CDN headers consulted after X-Forwarded-For, in order.
var clientIPHeaders = []string{
	"X-Real-IP",
	"CF-Connecting-IP",
	"Fastly-Client-IP",
	"True-Client-IP",
}

// ExtractClientIP resolves the caller's IPv4 address. It returns "" when no
// source yields a valid IPv4.
func ExtractClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := Normalize(first); ip != "" {
			return ip
		}
	}

	for _, header := range clientIPHeaders {
		if ip := Normalize(r.Header.Get(header)); ip != "" {
			return ip
		}
	}

	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	return Normalize(remote)
}

// Normalize converts IPv4, IPv4-mapped IPv6 and loopback forms to dotted-quad.
// Anything else yields "".
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimSuffix(s, "]"), "[")
	if s == "" {
		return ""
	}
	if IsValidIPv4(s) {
		return s
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ""
	}
	addr = addr.WithZone("")
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	if addr.Is6() && addr.IsLoopback() {
		return "127.0.0.1"
	}
	if !addr.Is4() {
		return ""
	}
	if ip := addr.String(); IsValidIPv4(ip) {
		return ip
	}
	return ""
}

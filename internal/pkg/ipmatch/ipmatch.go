// Package ipmatch validates IPv4 addresses and CIDR blocks and matches client
// addresses against allow-lists.
package ipmatch

import (
	"strconv"
	"strings"
)

// IsValidIPv4 reports whether s is four dot-separated decimal octets in 0-255.
// Octets must survive a numeric round trip, so "01" or "+1" are rejected.
func IsValidIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 || len(part) > 3 {
			return false
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
		if strconv.Itoa(n) != part {
			return false
		}
	}
	return true
}

// IsValidCIDR reports whether s is "ip/prefix" with a valid IPv4 and a prefix in [0,32].
func IsValidCIDR(s string) bool {
	_, _, ok := splitCIDR(s)
	return ok
}

func splitCIDR(s string) (string, int, bool) {
	ip, prefixStr, found := strings.Cut(s, "/")
	if !found || strings.Contains(prefixStr, "/") {
		return "", 0, false
	}
	if !IsValidIPv4(ip) {
		return "", 0, false
	}
	if len(prefixStr) == 0 || len(prefixStr) > 2 {
		return "", 0, false
	}
	for _, c := range prefixStr {
		if c < '0' || c > '9' {
			return "", 0, false
		}
	}
	prefix, err := strconv.Atoi(prefixStr)
	if err != nil || prefix < 0 || prefix > 32 {
		return "", 0, false
	}
	return ip, prefix, true
}

// IPToUint32 packs the four octets of ip big-endian. ok is false for an invalid address.
func IPToUint32(ip string) (uint32, bool) {
	if !IsValidIPv4(ip) {
		return 0, false
	}
	var out uint32
	for _, part := range strings.Split(ip, ".") {
		n, _ := strconv.Atoi(part)
		out = out<<8 | uint32(n)
	}
	return out, true
}

// IntToIP is the inverse of IPToUint32.
func IntToIP(v uint32) string {
	return strconv.Itoa(int(v>>24&0xff)) + "." +
		strconv.Itoa(int(v>>16&0xff)) + "." +
		strconv.Itoa(int(v>>8&0xff)) + "." +
		strconv.Itoa(int(v&0xff))
}

// IsIPInCIDR reports whether ip falls inside cidr. A /0 block contains every address.
func IsIPInCIDR(ip, cidr string) bool {
	network, prefix, ok := splitCIDR(cidr)
	if !ok {
		return false
	}
	ipInt, ok := IPToUint32(ip)
	if !ok {
		return false
	}
	if prefix == 0 {
		return true
	}
	netInt, _ := IPToUint32(network)
	mask := uint32(0xffffffff) << (32 - prefix)
	return ipInt&mask == netInt&mask
}

// MatchesAllowedIP reports whether clientIP equals, or falls inside, any entry of
// allowed. Entries are trimmed; malformed entries are skipped.
func MatchesAllowedIP(clientIP string, allowed []string) bool {
	if !IsValidIPv4(clientIP) {
		return false
	}
	for _, entry := range allowed {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		if strings.Contains(trimmed, "/") {
			if IsValidCIDR(trimmed) && IsIPInCIDR(clientIP, trimmed) {
				return true
			}
			continue
		}
		if trimmed == clientIP {
			return true
		}
	}
	return false
}

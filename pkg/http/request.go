package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
)

// IPConfig lists the proxies allowed to report the client address.
type IPConfig struct {
	TrustedProxies []string // CIDR ranges
}

// ExtractClientIP returns the client address of r. X-Forwarded-For (first
// valid entry) and then X-Real-IP are consulted only when the direct peer is
// inside config.TrustedProxies; otherwise the peer address is used.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	peer := remoteHost(r)
	if config == nil || !inAnyCIDR(peer, config.TrustedProxies) {
		return peer
	}

	for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if candidate = strings.TrimSpace(candidate); net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(realIP) != nil {
		return realIP
	}
	return peer
}

func remoteHost(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// inAnyCIDR reports whether ip falls in one of cidrs. Malformed ranges are skipped.
func inAnyCIDR(ip string, cidrs []string) bool {
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}
	for _, cidr := range cidrs {
		if _, ipNet, err := net.ParseCIDR(cidr); err == nil && ipNet.Contains(addr) {
			return true
		}
	}
	return false
}

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// DecodeJSON decodes a single JSON object from the request body into dst,
// rejecting unknown fields and bodies larger than MaxBodyBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

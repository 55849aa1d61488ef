// Package iphash turns client IPs into keyed, non-reversible tokens for funnel analytics.
package iphash

import (
	"encoding/hex"
	"net"
	"strings"

	"golang.org/x/crypto/blake2b"
)

type Hasher struct {
	key []byte
}

// New returns a Hasher keyed with secret. blake2b accepts keys up to 64 bytes;
// longer secrets are truncated.
func New(secret string) *Hasher {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	return &Hasher{key: key}
}

// Hash returns the hex digest of the normalised IP, or "" when ip is empty or unparsable.
func (h *Hasher) Hash(ip string) string {
	ip = strings.TrimSpace(ip)
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	mac, err := blake2b.New(16, h.key)
	if err != nil {
		return ""
	}
	mac.Write([]byte(parsed.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

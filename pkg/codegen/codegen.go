// Package codegen mints the human-facing share and coupon codes.
package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/gosimple/slug"
)

const (
	maxPrefixLen = 6
	couponLen    = 8
	// no 0/O or 1/I so codes survive being read aloud
	couponAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// SharePrefix turns a display name into an uppercase alphanumeric prefix,
// e.g. "Zoë Dela Cruz" -> "ZOEDEL".
func SharePrefix(name string) string {
	var b strings.Builder
	for _, r := range slug.Make(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == maxPrefixLen {
			break
		}
	}
	if b.Len() == 0 {
		return "LG"
	}
	return strings.ToUpper(b.String())
}

// ShareCode returns the name prefix followed by a random 4 digit disambiguator.
func ShareCode(name string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", SharePrefix(name), n.Int64()), nil
}

// CouponCode returns a code like "LG-7KQ2MZ9A".
func CouponCode() (string, error) {
	buf := make([]byte, couponLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = couponAlphabet[int(b)%len(couponAlphabet)]
	}
	return "LG-" + string(buf), nil
}

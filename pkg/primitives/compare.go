package primitives

import (
	"crypto/subtle"
	"strings"
)

// ConstantTimeEqual compares two byte slices without leaking timing
// information about where they first differ. Used for MAC verification and
// any comparison that touches secret material.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ConstantTimeEqualHex compares two hex-encoded secrets (e.g. private
// keys) in constant time, without ever decoding them into a form that
// could be partially logged.
func ConstantTimeEqualHex(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Package bech32 implements the BIP-173 checksummed base32 codec and the
// NIP-19 TLV entity encoding built on top of it (spec §4.2, C4). The
// 5-bit/8-bit regrouping and polymod checksum mirror
// github.com/btcsuite/btcd/btcutil/bech32, the dependency already grounded
// in other_examples' 77elements-noorsigner crypto.go (bech32.Decode,
// bech32.Encode, bech32.ConvertBits); this package wraps that codec with
// the HRP routing and typed TLV payloads Nostr entities need, which
// btcutil's bech32 does not provide on its own.
package bech32

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"cosanostra/pkg/cerr"
)

// MaxLength bounds entity strings; Nostr's TLV payloads are small, but an
// unbounded input could still drive an expensive decode.
const MaxLength = 5000

// encode regroups data into 5-bit words and applies the standard bech32
// checksum for hrp, delegating directly to btcutil/bech32.
func encode(hrp string, data []byte) (string, error) {
	words, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", cerr.Wrap(cerr.Bech32, "convert bits", err)
	}
	s, err := bech32.Encode(hrp, words)
	if err != nil {
		return "", cerr.Wrap(cerr.Bech32, "bech32 encode", err)
	}
	return s, nil
}

// decode validates the checksum and separator, then regroups the payload
// back to 8-bit bytes.
func decode(s string) (hrp string, data []byte, err error) {
	if len(s) == 0 || len(s) > MaxLength {
		return "", nil, cerr.New(cerr.Bech32, "invalid length")
	}
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, cerr.New(cerr.Bech32, "mixed-case string")
	}
	hrp, words, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return "", nil, cerr.Wrap(cerr.Bech32, "bech32 decode", err)
	}
	data, err = bech32.ConvertBits(words, 5, 8, false)
	if err != nil {
		return "", nil, cerr.Wrap(cerr.Bech32, "convert bits", err)
	}
	return strings.ToLower(hrp), data, nil
}

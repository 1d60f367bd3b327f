package bech32

import "cosanostra/pkg/cerr"

// TLV type bytes for nprofile/nevent/naddr payloads (spec §4.2).
const (
	tlvSpecial = 0
	tlvRelay   = 1
	tlvAuthor  = 2
	tlvKind    = 3
)

// tlvRecord is one decoded type-length-value entry.
type tlvRecord struct {
	typ   byte
	value []byte
}

// parseTLV walks b as a sequence of "type: u8 | length: u8 | value" records,
// stopping at the first malformed record. Unknown types are retained so
// callers can skip the ones they don't recognize, per spec §4.2.
func parseTLV(b []byte) ([]tlvRecord, error) {
	var out []tlvRecord
	for i := 0; i < len(b); {
		if i+2 > len(b) {
			return nil, cerr.New(cerr.Bech32, "truncated TLV header")
		}
		typ := b[i]
		length := int(b[i+1])
		start := i + 2
		end := start + length
		if end > len(b) {
			return nil, cerr.New(cerr.Bech32, "truncated TLV value")
		}
		out = append(out, tlvRecord{typ: typ, value: b[start:end]})
		i = end
	}
	return out, nil
}

// appendTLV appends one TLV record to b, rejecting values that can't fit
// the single-byte length prefix.
func appendTLV(b []byte, typ byte, value []byte) ([]byte, error) {
	if len(value) > 255 {
		return nil, cerr.New(cerr.Bech32, "TLV value exceeds 255 bytes")
	}
	b = append(b, typ, byte(len(value)))
	return append(b, value...), nil
}

// kindBytes returns the big-endian encoding of kind with leading zero
// bytes stripped, per spec §4.2's TLV type-3 rule. Kind 0 encodes as a
// single zero byte so the record is never empty.
func kindBytes(kind uint32) []byte {
	b := []byte{byte(kind >> 24), byte(kind >> 16), byte(kind >> 8), byte(kind)}
	i := 0
	for i < 3 && b[i] == 0 {
		i++
	}
	return b[i:]
}

// kindFromBytes interprets b as a 1..4-byte big-endian unsigned integer.
func kindFromBytes(b []byte) (uint32, error) {
	if len(b) == 0 || len(b) > 4 {
		return 0, cerr.New(cerr.Bech32, "invalid kind TLV length")
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v, nil
}

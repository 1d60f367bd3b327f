package nip44

import "cosanostra/pkg/cerr"

const (
	minPlaintextLen = 1
	maxPlaintextLen = 65535
)

// calcPaddedLen computes the total padded length (not counting the 2-byte
// length prefix) for a plaintext of n bytes, per spec §4.4.
func calcPaddedLen(n int) int {
	if n <= 32 {
		return 32
	}
	k := nextPowerOfTwoGreaterThan(n - 1)
	chunk := 32
	if k > 256 {
		chunk = k / 8
	}
	return chunk * ((n-1)/chunk + 1)
}

// nextPowerOfTwoGreaterThan returns the smallest power of two strictly
// greater than n.
func nextPowerOfTwoGreaterThan(n int) int {
	p := 1
	for p <= n {
		p <<= 1
	}
	return p
}

// pad builds the length-prefixed, zero-padded plaintext buffer: a 2-byte
// big-endian length followed by the plaintext, then zero bytes out to
// calcPaddedLen(len(plaintext)).
func pad(plaintext []byte) ([]byte, error) {
	n := len(plaintext)
	if n < minPlaintextLen || n > maxPlaintextLen {
		return nil, cerr.New(cerr.NIP44, "plaintext length out of range [1,65535]")
	}
	padded := calcPaddedLen(n)
	out := make([]byte, 2+padded)
	out[0] = byte(n >> 8)
	out[1] = byte(n)
	copy(out[2:], plaintext)
	return out, nil
}

// unpad reverses pad, validating the declared length, the total size, and
// that every pad byte is zero (spec §4.4).
func unpad(padded []byte) ([]byte, error) {
	if len(padded) < 2 {
		return nil, cerr.New(cerr.NIP44, "padded plaintext too short")
	}
	n := int(padded[0])<<8 | int(padded[1])
	if n < minPlaintextLen || n > maxPlaintextLen {
		return nil, cerr.New(cerr.NIP44, "declared plaintext length out of range")
	}
	body := padded[2:]
	expected := calcPaddedLen(n)
	if len(body) != expected {
		return nil, cerr.New(cerr.NIP44, "padded length does not match declared plaintext length")
	}
	if n > len(body) {
		return nil, cerr.New(cerr.NIP44, "declared length exceeds padded body")
	}
	for _, b := range body[n:] {
		if b != 0 {
			return nil, cerr.New(cerr.NIP44, "non-zero padding byte")
		}
	}
	out := make([]byte, n)
	copy(out, body[:n])
	return out, nil
}

package nip44

// chacha20XOR implements the RFC 8439 ChaCha20 stream cipher directly (the
// spec calls for a bare ChaCha20 keystream rather than the AEAD
// construction any off-the-shelf package would reach for), XORing src
// against the keystream starting at block counter 0 and writing the
// result into dst. dst and src may be the same slice.
func chacha20XOR(key [32]byte, nonce [12]byte, src, dst []byte) {
	var state [16]uint32
	initState(&state, key, nonce, 0)

	block := make([]byte, 64)
	counter := state
	for offset := 0; offset < len(src); offset += 64 {
		serializeBlock(runBlock(counter), block)
		end := offset + 64
		if end > len(src) {
			end = len(src)
		}
		n := end - offset
		for i := 0; i < n; i++ {
			dst[offset+i] = src[offset+i] ^ block[i]
		}
		counter[12]++
	}
}

var chachaConstants = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

func initState(state *[16]uint32, key [32]byte, nonce [12]byte, counter uint32) {
	state[0], state[1], state[2], state[3] = chachaConstants[0], chachaConstants[1], chachaConstants[2], chachaConstants[3]
	for i := 0; i < 8; i++ {
		state[4+i] = le32(key[i*4 : i*4+4])
	}
	state[12] = counter
	for i := 0; i < 3; i++ {
		state[13+i] = le32(nonce[i*4 : i*4+4])
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLe32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func rotl32(x uint32, n uint) uint32 {
	return (x << n) | (x >> (32 - n))
}

// runBlock applies 20 rounds (10 double-rounds) of ChaCha quarter rounds to
// the working state seeded from initial, then adds the initial state back
// in per RFC 8439.
func runBlock(initial [16]uint32) [16]uint32 {
	working := initial
	for i := 0; i < 10; i++ {
		quarterRound(&working, 0, 4, 8, 12)
		quarterRound(&working, 1, 5, 9, 13)
		quarterRound(&working, 2, 6, 10, 14)
		quarterRound(&working, 3, 7, 11, 15)
		quarterRound(&working, 0, 5, 10, 15)
		quarterRound(&working, 1, 6, 11, 12)
		quarterRound(&working, 2, 7, 8, 13)
		quarterRound(&working, 3, 4, 9, 14)
	}
	var out [16]uint32
	for i := range out {
		out[i] = working[i] + initial[i]
	}
	return out
}

func quarterRound(s *[16]uint32, a, b, c, d int) {
	s[a] += s[b]
	s[d] ^= s[a]
	s[d] = rotl32(s[d], 16)

	s[c] += s[d]
	s[b] ^= s[c]
	s[b] = rotl32(s[b], 12)

	s[a] += s[b]
	s[d] ^= s[a]
	s[d] = rotl32(s[d], 8)

	s[c] += s[d]
	s[b] ^= s[c]
	s[b] = rotl32(s[b], 7)
}

func serializeBlock(state [16]uint32, out []byte) {
	for i, w := range state {
		putLe32(out[i*4:i*4+4], w)
	}
}

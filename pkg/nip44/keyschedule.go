package nip44

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"cosanostra/pkg/cerr"
)

const conversationKeySalt = "nip44-v2"

// conversationKey derives the long-lived per-pair key from the ECDH shared
// x-coordinate (spec §4.4). golang.org/x/crypto/hkdf's Extract returns the
// pseudorandom key as a byte slice; its 32 bytes are copied out as the
// conversation key.
func conversationKey(sharedSecret []byte) ([]byte, error) {
	prk := hkdf.Extract(sha256.New, sharedSecret, []byte(conversationKeySalt))
	if len(prk) != sha256.Size {
		return nil, cerr.New(cerr.NIP44, "unexpected HKDF-Extract output length")
	}
	out := make([]byte, sha256.Size)
	copy(out, prk)
	return out, nil
}

// messageKeys expands convKey with the per-message nonce into the
// chacha key, chacha nonce, and hmac key slices (spec §4.4).
type messageKeys struct {
	chachaKey   [32]byte
	chachaNonce [12]byte
	hmacKey     [32]byte
}

func deriveMessageKeys(convKey, nonce32 []byte) (messageKeys, error) {
	if len(nonce32) != 32 {
		return messageKeys{}, cerr.New(cerr.NIP44, "nonce must be 32 bytes")
	}
	reader := hkdf.Expand(sha256.New, convKey, nonce32)
	expanded := make([]byte, 76)
	if _, err := io.ReadFull(reader, expanded); err != nil {
		return messageKeys{}, cerr.Wrap(cerr.NIP44, "hkdf expand", err)
	}

	var mk messageKeys
	copy(mk.chachaKey[:], expanded[0:32])
	copy(mk.chachaNonce[:], expanded[32:44])
	copy(mk.hmacKey[:], expanded[44:76])
	return mk, nil
}

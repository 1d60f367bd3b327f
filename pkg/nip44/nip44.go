// Package nip44 implements NIP-44 v2 encryption: ECDH key agreement, an
// HKDF key schedule, an in-house ChaCha20 stream cipher, and an
// HMAC-SHA256 MAC, composed into a single versioned payload format (spec
// §4.4, C6). Grounded on the ECDH/bech32 patterns in
// other_examples/64c98d90_77elements-noorsigner__crypto.go.go (which wraps
// go-nostr's nip44 package) and on
// other_examples/3572b8d1_klppl-klistr__internal-nostr-signer.go.go's use
// of golang.org/x/crypto/hkdf for key derivation; the cipher itself is
// implemented directly per spec rather than delegated to a third-party
// NIP-44 package, since none of the retrieved examples vendor one as a
// standalone dependency.
package nip44

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/primitives"
)

const (
	version = 0x02

	// minPayloadLen is 1 (version) + 32 (nonce) + 34 (min ciphertext: a
	// 2-byte length prefix plus the 32-byte floor from calcPaddedLen) + 32
	// (mac).
	minPayloadLen = 1 + 32 + 34 + 32
)

// Encrypt produces a NIP-44 v2 payload of plaintext from senderPrivHex to
// recipientPubHex, base64-encoded. A fresh 32-byte nonce is drawn from
// crypto/rand for every call; a CSPRNG failure is returned as an error
// rather than silently degraded.
func Encrypt(senderPrivHex, recipientPubHex, plaintext string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", cerr.Wrap(cerr.NIP44, "read CSPRNG for nonce", err)
	}
	return EncryptWithNonce(senderPrivHex, recipientPubHex, plaintext, nonce)
}

// EncryptWithNonce is Encrypt with an explicit nonce, for deterministic
// test vectors. Production callers should use Encrypt.
func EncryptWithNonce(senderPrivHex, recipientPubHex, plaintext string, nonce []byte) (string, error) {
	if len(nonce) != 32 {
		return "", cerr.New(cerr.NIP44, "nonce must be 32 bytes")
	}

	shared, err := sharedX(senderPrivHex, recipientPubHex)
	if err != nil {
		return "", err
	}
	defer primitives.Zero(shared)

	convKey, err := conversationKey(shared)
	if err != nil {
		return "", err
	}
	defer primitives.Zero(convKey)

	mk, err := deriveMessageKeys(convKey, nonce)
	if err != nil {
		return "", err
	}

	padded, err := pad([]byte(plaintext))
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, len(padded))
	chacha20XOR(mk.chachaKey, mk.chachaNonce, padded, ciphertext)

	mac := computeMAC(mk.hmacKey, nonce, ciphertext)

	out := make([]byte, 0, minPayloadLen+len(ciphertext)-32)
	out = append(out, version)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	out = append(out, mac...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt: it checks the version byte, verifies the MAC
// in constant time, decrypts, then unpads. Each failure mode (bad version,
// bad MAC, bad padding) returns a distinct NIP44-kind error message so
// callers can distinguish tampering from a corrupt payload.
func Decrypt(recipientPrivHex, senderPubHex, payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", cerr.Wrap(cerr.NIP44, "base64 decode payload", err)
	}
	if len(raw) < minPayloadLen {
		return "", cerr.New(cerr.NIP44, "payload shorter than minimum 99 bytes")
	}
	if raw[0] != version {
		return "", cerr.New(cerr.NIP44, "unsupported payload version")
	}

	nonce := raw[1:33]
	mac := raw[len(raw)-32:]
	ciphertext := raw[33 : len(raw)-32]

	shared, err := sharedX(recipientPrivHex, senderPubHex)
	if err != nil {
		return "", err
	}
	defer primitives.Zero(shared)

	convKey, err := conversationKey(shared)
	if err != nil {
		return "", err
	}
	defer primitives.Zero(convKey)

	mk, err := deriveMessageKeys(convKey, nonce)
	if err != nil {
		return "", err
	}

	expectedMAC := computeMAC(mk.hmacKey, nonce, ciphertext)
	if subtle.ConstantTimeCompare(expectedMAC, mac) != 1 {
		return "", cerr.New(cerr.NIP44, "MAC verification failed")
	}

	padded := make([]byte, len(ciphertext))
	chacha20XOR(mk.chachaKey, mk.chachaNonce, ciphertext, padded)

	plaintext, err := unpad(padded)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func computeMAC(hmacKey [32]byte, nonce, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, hmacKey[:])
	mac.Write([]byte{version})
	mac.Write(nonce)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

package nip44

import (
	"encoding/base64"
	"strings"
	"testing"

	"cosanostra/pkg/keys"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sender, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Zero()
	recipient, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer recipient.Zero()

	payload, err := Encrypt(sender.PrivateKeyHex(), recipient.PublicKeyHex(), "hello world")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	plaintext, err := Decrypt(recipient.PrivateKeyHex(), sender.PublicKeyHex(), payload)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plaintext != "hello world" {
		t.Fatalf("got %q, want %q", plaintext, "hello world")
	}
}

func TestEncryptWithFixedNonceShape(t *testing.T) {
	sender, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Zero()
	recipient, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer recipient.Zero()

	nonce := make([]byte, 32)
	for i := range nonce {
		nonce[i] = byte(i)
	}

	payload, err := EncryptWithNonce(sender.PrivateKeyHex(), recipient.PublicKeyHex(), "hi", nonce)
	if err != nil {
		t.Fatalf("EncryptWithNonce: %v", err)
	}

	raw := mustBase64Decode(t, payload)
	if raw[0] != version {
		t.Fatalf("version byte = %x, want %x", raw[0], version)
	}
	if len(raw) < minPayloadLen {
		t.Fatalf("payload length %d below minimum %d", len(raw), minPayloadLen)
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	sender, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Zero()
	recipient, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer recipient.Zero()

	payload, err := Encrypt(sender.PrivateKeyHex(), recipient.PublicKeyHex(), "hello world")
	if err != nil {
		t.Fatal(err)
	}
	raw := mustBase64Decode(t, payload)
	raw[len(raw)-1] ^= 0xff
	tampered := mustBase64Encode(raw)

	if _, err := Decrypt(recipient.PrivateKeyHex(), sender.PublicKeyHex(), tampered); err == nil {
		t.Fatal("expected MAC failure on tampered payload")
	}
}

func TestDecryptRejectsUnknownVersion(t *testing.T) {
	sender, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Zero()
	recipient, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer recipient.Zero()

	payload, err := Encrypt(sender.PrivateKeyHex(), recipient.PublicKeyHex(), "hello world")
	if err != nil {
		t.Fatal(err)
	}
	raw := mustBase64Decode(t, payload)
	raw[0] = 0x01
	tampered := mustBase64Encode(raw)

	if _, err := Decrypt(recipient.PrivateKeyHex(), sender.PublicKeyHex(), tampered); err == nil {
		t.Fatal("expected version mismatch to be rejected")
	}
}

func TestSharedXIsSymmetric(t *testing.T) {
	a, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Zero()
	b, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Zero()

	x1, err := sharedX(a.PrivateKeyHex(), b.PublicKeyHex())
	if err != nil {
		t.Fatal(err)
	}
	x2, err := sharedX(b.PrivateKeyHex(), a.PublicKeyHex())
	if err != nil {
		t.Fatal(err)
	}
	if string(x1) != string(x2) {
		t.Fatalf("ECDH shared secret is not symmetric: %x vs %x", x1, x2)
	}
}

func TestCalcPaddedLen(t *testing.T) {
	cases := []struct{ n, want int }{
		{1, 32}, {32, 32}, {33, 64}, {64, 64}, {65, 96},
		{256, 256}, {257, 320},
	}
	for _, c := range cases {
		if got := calcPaddedLen(c.n); got != c.want {
			t.Errorf("calcPaddedLen(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestPadUnpadRoundTrip(t *testing.T) {
	plaintext := []byte(strings.Repeat("x", 100))
	padded, err := pad(plaintext)
	if err != nil {
		t.Fatal(err)
	}
	got, err := unpad(padded)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestUnpadRejectsNonZeroPadding(t *testing.T) {
	padded, err := pad([]byte("hi"))
	if err != nil {
		t.Fatal(err)
	}
	padded[len(padded)-1] = 0x01
	if _, err := unpad(padded); err == nil {
		t.Fatal("expected non-zero pad byte to be rejected")
	}
}

func mustBase64Decode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	return b
}

func mustBase64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

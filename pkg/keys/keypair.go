// Package keys implements Schnorr key generation, signing, and
// verification over secp256k1 (BIP-340), per spec §4.1/§4.3 (C3).
// Grounded on the teacher's pkg/models/utils.go ValidateEvent, which
// already uses github.com/btcsuite/btcd/btcec/v2/schnorr; this package
// generalizes that relay-side verification helper into a full
// generate/sign/verify KeyPair used by the event builder.
package keys

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/event"
	"cosanostra/pkg/primitives"
)

// KeyPair holds a secp256k1 private key and its x-only BIP-340 public
// key, both stored as lower-case hex (the canonical wire form). Secret
// must be zeroized via Zero() once the KeyPair is no longer needed.
type KeyPair struct {
	privKey *btcec.PrivateKey
	privHex string
	pubHex  string
}

// Generate samples a secret uniformly in [1, n-1] (n = secp256k1 group
// order, via crypto/rand plus rejection in btcec's GeneratePrivateKey,
// which retries internally on out-of-range draws) and derives the
// x-only public key.
func Generate() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, cerr.Wrap(cerr.Crypto, "generate keypair", err)
	}
	return fromPrivateKey(priv), nil
}

// FromPrivateKeyHex loads a KeyPair from a 64-hex private key, as parsed
// from an nsec or passed in directly.
func FromPrivateKeyHex(hexKey string) (*KeyPair, error) {
	raw, err := primitives.DecodeHex(hexKey, primitives.KeyHexLen)
	if err != nil {
		return nil, cerr.Wrap(cerr.Crypto, "parse private key", err)
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	primitives.Zero(raw)
	return fromPrivateKey(priv), nil
}

func fromPrivateKey(priv *btcec.PrivateKey) *KeyPair {
	pubBytes := schnorr.SerializePubKey(priv.PubKey())
	return &KeyPair{
		privKey: priv,
		privHex: primitives.EncodeHex(priv.Serialize()),
		pubHex:  primitives.EncodeHex(pubBytes),
	}
}

// PublicKeyFromHex derives only the x-only public key hex for a given
// private key hex, without retaining the private key in a KeyPair.
func PublicKeyFromHex(privHex string) (string, error) {
	kp, err := FromPrivateKeyHex(privHex)
	if err != nil {
		return "", err
	}
	defer kp.Zero()
	return kp.PublicKeyHex(), nil
}

// PrivateKeyHex returns the lower-case hex secret. Callers that hold onto
// the returned string are responsible for its lifetime; Go strings cannot
// be zeroized (see the note in pkg/primitives/zeroize.go).
func (kp *KeyPair) PrivateKeyHex() string { return kp.privHex }

// PublicKeyHex returns the lower-case hex x-only public key.
func (kp *KeyPair) PublicKeyHex() string { return kp.pubHex }

// Zero overwrites the in-memory private-key material. The KeyPair must
// not be used afterward.
func (kp *KeyPair) Zero() {
	if kp.privKey != nil {
		kp.privKey.Zero()
	}
	kp.privHex = ""
}

// Sign computes the canonical id for ev, signs it with this KeyPair's
// private key, and returns the complete signed event (spec §4.1). id is
// treated as a 32-byte message, not rehashed again: BIP-340 is applied
// directly over the 32-byte digest.
func (kp *KeyPair) Sign(ev event.Event) (event.Event, error) {
	ev.PubKey = kp.pubHex
	id, err := ev.ComputeID()
	if err != nil {
		return event.Event{}, err
	}
	idBytes, err := primitives.DecodeHex(id, primitives.IDHexLen)
	if err != nil {
		return event.Event{}, cerr.Wrap(cerr.Crypto, "decode computed id", err)
	}

	sig, err := schnorr.Sign(kp.privKey, idBytes)
	if err != nil {
		return event.Event{}, cerr.Wrap(cerr.Crypto, "schnorr sign", err)
	}

	ev.ID = id
	ev.Sig = primitives.EncodeHex(sig.Serialize())
	return ev, nil
}

// Verify recomputes ev's id from its canonical serialization, rejects on
// mismatch, then checks the BIP-340 Schnorr signature against ev.PubKey.
// Id mismatch returns a Validation error; any cryptographic failure
// returns a Crypto error (spec §4.1).
func Verify(ev event.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	computedID, err := ev.ComputeID()
	if err != nil {
		return err
	}
	if computedID != ev.ID {
		return cerr.New(cerr.Validation, "event id does not match canonical serialization")
	}

	pubBytes, err := primitives.DecodeHex(ev.PubKey, primitives.KeyHexLen)
	if err != nil {
		return cerr.Wrap(cerr.Crypto, "decode pubkey", err)
	}
	sigBytes, err := primitives.DecodeHex(ev.Sig, primitives.SigHexLen)
	if err != nil {
		return cerr.Wrap(cerr.Crypto, "decode signature", err)
	}
	idBytes, err := primitives.DecodeHex(ev.ID, primitives.IDHexLen)
	if err != nil {
		return cerr.Wrap(cerr.Crypto, "decode id", err)
	}

	pubKey, err := schnorr.ParsePubKey(pubBytes)
	if err != nil {
		return cerr.Wrap(cerr.Crypto, "parse pubkey", err)
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return cerr.Wrap(cerr.Crypto, "parse signature", err)
	}

	if !sig.Verify(idBytes, pubKey) {
		return cerr.New(cerr.Crypto, "signature verification failed")
	}
	return nil
}

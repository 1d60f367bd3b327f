package bech32

import (
	"cosanostra/pkg/cerr"
	"cosanostra/pkg/primitives"
)

// Human-readable parts for every NIP-19 entity this library supports.
const (
	HRPPubKey    = "npub"
	HRPSecretKey = "nsec"
	HRPNote      = "note"
	HRPProfile   = "nprofile"
	HRPEvent     = "nevent"
	HRPAddress   = "naddr"
	HRPRelay     = "nrelay"
)

// Profile is the decoded payload of an nprofile entity.
type Profile struct {
	PubKey string
	Relays []string
}

// EventPointer is the decoded payload of an nevent entity.
type EventPointer struct {
	ID     string
	Relays []string
	Author string
	Kind   *uint32
}

// Address is the decoded payload of an naddr entity (a parameterized
// replaceable event coordinate).
type Address struct {
	Identifier string
	Relays     []string
	Author     string
	Kind       uint32
}

// Relay is the decoded payload of an nrelay entity.
type Relay struct {
	URL string
}

// EncodePublicKey encodes a 32-byte x-only public key as npub.
func EncodePublicKey(pubKeyHex string) (string, error) {
	return encodeRaw(HRPPubKey, pubKeyHex)
}

// EncodeSecretKey encodes a 32-byte private key as nsec. Callers in this
// library only ever call this for display/export; the URI scanner (C5)
// refuses to ever accept or emit nsec values it encounters.
func EncodeSecretKey(privKeyHex string) (string, error) {
	return encodeRaw(HRPSecretKey, privKeyHex)
}

// EncodeNote encodes a 32-byte event id as note.
func EncodeNote(eventIDHex string) (string, error) {
	return encodeRaw(HRPNote, eventIDHex)
}

func encodeRaw(hrp, hexVal string) (string, error) {
	raw, err := primitives.DecodeHex(hexVal, primitives.KeyHexLen)
	if err != nil {
		return "", cerr.Wrap(cerr.Bech32, "decode raw value", err)
	}
	return encode(hrp, raw)
}

// DecodePublicKey decodes an npub, returning its 64-hex public key.
func DecodePublicKey(npub string) (string, error) {
	return decodeRaw(HRPPubKey, npub)
}

// DecodeSecretKey decodes an nsec, returning its 64-hex private key. Parsing
// support is retained for key import (spec §4.2); the URI scanner must
// never call this.
func DecodeSecretKey(nsec string) (string, error) {
	return decodeRaw(HRPSecretKey, nsec)
}

// DecodeNote decodes a note, returning its 64-hex event id.
func DecodeNote(note string) (string, error) {
	return decodeRaw(HRPNote, note)
}

func decodeRaw(wantHRP, s string) (string, error) {
	hrp, data, err := decode(s)
	if err != nil {
		return "", err
	}
	if hrp != wantHRP {
		return "", cerr.New(cerr.Bech32, "unexpected human-readable part: "+hrp)
	}
	if len(data) != 32 {
		return "", cerr.New(cerr.Bech32, "expected 32-byte payload")
	}
	return primitives.EncodeHex(data), nil
}

// EncodeProfile encodes an nprofile TLV payload: a required special record
// (the pubkey) followed by zero or more relay records.
func EncodeProfile(p Profile) (string, error) {
	pub, err := primitives.DecodeHex(p.PubKey, primitives.KeyHexLen)
	if err != nil {
		return "", cerr.Wrap(cerr.Bech32, "decode profile pubkey", err)
	}
	var buf []byte
	buf, err = appendTLV(buf, tlvSpecial, pub)
	if err != nil {
		return "", err
	}
	for _, r := range p.Relays {
		if buf, err = appendTLV(buf, tlvRelay, []byte(r)); err != nil {
			return "", err
		}
	}
	return encode(HRPProfile, buf)
}

// DecodeProfile parses an nprofile string.
func DecodeProfile(s string) (Profile, error) {
	hrp, data, err := decode(s)
	if err != nil {
		return Profile{}, err
	}
	if hrp != HRPProfile {
		return Profile{}, cerr.New(cerr.Bech32, "unexpected human-readable part: "+hrp)
	}
	records, err := parseTLV(data)
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	var gotSpecial bool
	for _, rec := range records {
		switch rec.typ {
		case tlvSpecial:
			if len(rec.value) != 32 {
				return Profile{}, cerr.New(cerr.Bech32, "nprofile special field must be 32 bytes")
			}
			p.PubKey = primitives.EncodeHex(rec.value)
			gotSpecial = true
		case tlvRelay:
			p.Relays = append(p.Relays, string(rec.value))
		}
	}
	if !gotSpecial {
		return Profile{}, cerr.New(cerr.Bech32, "nprofile missing required special field")
	}
	return p, nil
}

// EncodeEventPointer encodes an nevent TLV payload.
func EncodeEventPointer(e EventPointer) (string, error) {
	id, err := primitives.DecodeHex(e.ID, primitives.IDHexLen)
	if err != nil {
		return "", cerr.Wrap(cerr.Bech32, "decode event id", err)
	}
	var buf []byte
	if buf, err = appendTLV(buf, tlvSpecial, id); err != nil {
		return "", err
	}
	for _, r := range e.Relays {
		if buf, err = appendTLV(buf, tlvRelay, []byte(r)); err != nil {
			return "", err
		}
	}
	if e.Author != "" {
		author, err := primitives.DecodeHex(e.Author, primitives.KeyHexLen)
		if err != nil {
			return "", cerr.Wrap(cerr.Bech32, "decode event author", err)
		}
		if buf, err = appendTLV(buf, tlvAuthor, author); err != nil {
			return "", err
		}
	}
	if e.Kind != nil {
		if buf, err = appendTLV(buf, tlvKind, kindBytes(*e.Kind)); err != nil {
			return "", err
		}
	}
	return encode(HRPEvent, buf)
}

// DecodeEventPointer parses an nevent string.
func DecodeEventPointer(s string) (EventPointer, error) {
	hrp, data, err := decode(s)
	if err != nil {
		return EventPointer{}, err
	}
	if hrp != HRPEvent {
		return EventPointer{}, cerr.New(cerr.Bech32, "unexpected human-readable part: "+hrp)
	}
	records, err := parseTLV(data)
	if err != nil {
		return EventPointer{}, err
	}
	var e EventPointer
	var gotSpecial bool
	for _, rec := range records {
		switch rec.typ {
		case tlvSpecial:
			if len(rec.value) != 32 {
				return EventPointer{}, cerr.New(cerr.Bech32, "nevent special field must be 32 bytes")
			}
			e.ID = primitives.EncodeHex(rec.value)
			gotSpecial = true
		case tlvRelay:
			e.Relays = append(e.Relays, string(rec.value))
		case tlvAuthor:
			if len(rec.value) != 32 {
				return EventPointer{}, cerr.New(cerr.Bech32, "nevent author field must be 32 bytes")
			}
			e.Author = primitives.EncodeHex(rec.value)
		case tlvKind:
			kind, err := kindFromBytes(rec.value)
			if err != nil {
				return EventPointer{}, err
			}
			e.Kind = &kind
		}
	}
	if !gotSpecial {
		return EventPointer{}, cerr.New(cerr.Bech32, "nevent missing required special field")
	}
	return e, nil
}

// EncodeAddress encodes an naddr TLV payload for a parameterized
// replaceable event coordinate.
func EncodeAddress(a Address) (string, error) {
	author, err := primitives.DecodeHex(a.Author, primitives.KeyHexLen)
	if err != nil {
		return "", cerr.Wrap(cerr.Bech32, "decode address author", err)
	}
	var buf []byte
	if buf, err = appendTLV(buf, tlvSpecial, []byte(a.Identifier)); err != nil {
		return "", err
	}
	for _, r := range a.Relays {
		if buf, err = appendTLV(buf, tlvRelay, []byte(r)); err != nil {
			return "", err
		}
	}
	if buf, err = appendTLV(buf, tlvAuthor, author); err != nil {
		return "", err
	}
	if buf, err = appendTLV(buf, tlvKind, kindBytes(a.Kind)); err != nil {
		return "", err
	}
	return encode(HRPAddress, buf)
}

// DecodeAddress parses an naddr string.
func DecodeAddress(s string) (Address, error) {
	hrp, data, err := decode(s)
	if err != nil {
		return Address{}, err
	}
	if hrp != HRPAddress {
		return Address{}, cerr.New(cerr.Bech32, "unexpected human-readable part: "+hrp)
	}
	records, err := parseTLV(data)
	if err != nil {
		return Address{}, err
	}
	var a Address
	var gotAuthor, gotKind bool
	for _, rec := range records {
		switch rec.typ {
		case tlvSpecial:
			a.Identifier = string(rec.value)
		case tlvRelay:
			a.Relays = append(a.Relays, string(rec.value))
		case tlvAuthor:
			if len(rec.value) != 32 {
				return Address{}, cerr.New(cerr.Bech32, "naddr author field must be 32 bytes")
			}
			a.Author = primitives.EncodeHex(rec.value)
			gotAuthor = true
		case tlvKind:
			kind, err := kindFromBytes(rec.value)
			if err != nil {
				return Address{}, err
			}
			a.Kind = kind
			gotKind = true
		}
	}
	if !gotAuthor {
		return Address{}, cerr.New(cerr.Bech32, "naddr missing required author field")
	}
	if !gotKind {
		return Address{}, cerr.New(cerr.Bech32, "naddr missing required kind field")
	}
	return a, nil
}

// EncodeRelay encodes an nrelay TLV payload (a single special relay-URL
// record).
func EncodeRelay(r Relay) (string, error) {
	buf, err := appendTLV(nil, tlvSpecial, []byte(r.URL))
	if err != nil {
		return "", err
	}
	return encode(HRPRelay, buf)
}

// DecodeRelay parses an nrelay string.
func DecodeRelay(s string) (Relay, error) {
	hrp, data, err := decode(s)
	if err != nil {
		return Relay{}, err
	}
	if hrp != HRPRelay {
		return Relay{}, cerr.New(cerr.Bech32, "unexpected human-readable part: "+hrp)
	}
	records, err := parseTLV(data)
	if err != nil {
		return Relay{}, err
	}
	for _, rec := range records {
		if rec.typ == tlvSpecial {
			return Relay{URL: string(rec.value)}, nil
		}
	}
	return Relay{}, cerr.New(cerr.Bech32, "nrelay missing required special field")
}

// HRPOf returns the human-readable part of s without fully decoding it, so
// callers (the URI scanner) can dispatch on entity type cheaply.
func HRPOf(s string) (string, error) {
	hrp, _, err := decode(s)
	return hrp, err
}

// Package event implements the Nostr event model: canonical JSON
// serialization, content-addressed ids, the signed/unsigned lifecycle, and
// tag accessors (spec §3, §4.1). It is grounded on the teacher's
// pkg/models/event.go and pkg/models/utils.go, generalized from a
// relay-side validator into the client-side builder/signer/verifier this
// library needs.
package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/primitives"
)

// MaxContentBytes is the largest content field this library will build or
// accept, per spec §3.
const MaxContentBytes = 256 * 1024

// Tag is one ordered sequence of strings; Tag[0] is the tag name.
type Tag []string

// Name returns the tag's first element, or "" for an empty tag.
func (t Tag) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value returns element i of the tag's positional values (0-indexed past
// the name, so Value(0) is t[1]), or "" if it doesn't exist.
func (t Tag) Value(i int) string {
	idx := i + 1
	if idx < 0 || idx >= len(t) {
		return ""
	}
	return t[idx]
}

// Tags is an ordered sequence of Tag; order is part of event identity.
type Tags []Tag

// Find returns the first tag with the given name, and whether one was
// found.
func (ts Tags) Find(name string) (Tag, bool) {
	for _, t := range ts {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// FindAll returns every tag with the given name, in order.
func (ts Tags) FindAll(name string) []Tag {
	var out []Tag
	for _, t := range ts {
		if t.Name() == name {
			out = append(out, t)
		}
	}
	return out
}

// Event is the central signed, content-addressed record exchanged with
// relays (spec §3). Field names and JSON tags match the wire format
// exactly; no forward slashes are escaped on encode.
type Event struct {
	ID        string `json:"id"`
	PubKey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Tags      Tags   `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// Kind ranges from spec §3, advisory for replacement semantics.
const (
	KindRegularMax       = 999
	KindReplaceableMin   = 1000
	KindReplaceableMax   = 9999
	KindEphemeralMin     = 10000
	KindEphemeralMax     = 19999
	KindParamReplaceMinA = 20000
	KindParamReplaceMaxA = 29999
	KindParamReplaceMinB = 30000
	KindParamReplaceMaxB = 39999
)

// IsReplaceable reports whether the relay keeps only the latest event per
// (pubkey, kind) for this kind.
func (e *Event) IsReplaceable() bool {
	return e.Kind >= KindReplaceableMin && e.Kind <= KindReplaceableMax
}

// IsEphemeral reports whether a relay may choose not to store this kind.
func (e *Event) IsEphemeral() bool {
	return e.Kind >= KindEphemeralMin && e.Kind <= KindEphemeralMax
}

// IsParameterizedReplaceable reports whether identity for this kind is
// (pubkey, kind, d-tag value).
func (e *Event) IsParameterizedReplaceable() bool {
	return (e.Kind >= KindParamReplaceMinA && e.Kind <= KindParamReplaceMaxA) ||
		(e.Kind >= KindParamReplaceMinB && e.Kind <= KindParamReplaceMaxB)
}

// DTag returns the value of this event's "d" tag (the parameterized
// identifier), or "" if absent.
func (e *Event) DTag() string {
	if t, ok := Tags(e.Tags).Find("d"); ok {
		return t.Value(0)
	}
	return ""
}

// IsSigned reports whether the event carries a non-empty signature.
func (e *Event) IsSigned() bool {
	return e.Sig != ""
}

// CanonicalSerialize produces the UTF-8 bytes of the minimal JSON array
// [0, pubkey, created_at, kind, tags, content] used for both id
// computation and signing (spec §3, §6). Forward slashes are not escaped
// and no insignificant whitespace is emitted, matching the teacher's
// SerializeEvent but promoted from a package function tied to a
// relay-local Event type to the builder/verifier path below.
func (e *Event) CanonicalSerialize() ([]byte, error) {
	if len(e.Content) > MaxContentBytes {
		return nil, cerr.New(cerr.Validation, "content exceeds 256 KiB")
	}
	tags := e.Tags
	if tags == nil {
		tags = Tags{}
	}
	arr := []interface{}{0, e.PubKey, e.CreatedAt, e.Kind, tags, e.Content}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(arr); err != nil {
		return nil, cerr.Wrap(cerr.Serialization, "canonical serialize", err)
	}

	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

// ComputeID recomputes the event id as the hex-encoded SHA-256 of the
// canonical serialization, per spec §3/§8.
func (e *Event) ComputeID() (string, error) {
	ser, err := e.CanonicalSerialize()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(ser)
	return primitives.EncodeHex(sum[:]), nil
}

// Validate checks structural invariants that don't require cryptography:
// hex lengths, tag shape, and content size. It does not verify the
// signature; call Verify (pkg/keys) for that.
func (e *Event) Validate() error {
	if !primitives.IsHex(e.PubKey, primitives.KeyHexLen) {
		return cerr.New(cerr.Validation, "pubkey must be 64 hex characters")
	}
	if e.Kind < 0 || e.Kind > 65535 {
		return cerr.New(cerr.Validation, "kind out of range")
	}
	if len(e.Content) > MaxContentBytes {
		return cerr.New(cerr.Validation, "content exceeds 256 KiB")
	}
	for _, t := range e.Tags {
		if len(t) < 1 {
			return cerr.New(cerr.Validation, "tag must have at least one element")
		}
	}
	if e.IsSigned() {
		if !primitives.IsHex(e.ID, primitives.IDHexLen) {
			return cerr.New(cerr.Validation, "id must be 64 hex characters")
		}
		if !primitives.IsHex(e.Sig, primitives.SigHexLen) {
			return cerr.New(cerr.Validation, "sig must be 128 hex characters")
		}
	}
	return nil
}

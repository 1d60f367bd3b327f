// Package nip57 implements zap request (kind 9734) and zap receipt (kind
// 9735) construction and validation (spec's SUPPLEMENTED FEATURES, C13b).
// Built directly on pkg/event.Builder's tag-shape conventions rather than
// a distinct teacher file, a thin kind-specific layer over the general
// event model exactly as spec §3 describes for "builder conveniences for
// specific event kinds".
package nip57

import (
	"strconv"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/event"
)

const (
	KindZapRequest = 9734
	KindZapReceipt = 9735
)

// ZapRequest describes the fields needed to build a kind-9734 event, which
// the zap request is itself (not gift-wrapped): the content is a free-text
// comment, and relays/amount/lnurl travel as tags.
type ZapRequest struct {
	RecipientPubKey string
	EventID         string // optional: zapping a specific event
	AddressPointer  string // optional: zapping a parameterized-replaceable event ("kind:pubkey:d")
	Relays          []string
	AmountMsats     int64
	LNURL           string
	Comment         string
}

// BuildZapRequest assembles the unsigned kind-9734 event. Callers sign it
// with the zapper's keypair (or have a NIP-46 remote signer do so) before
// sending it to the recipient's LNURL callback.
func BuildZapRequest(z ZapRequest) (event.Event, error) {
	if z.RecipientPubKey == "" {
		return event.Event{}, cerr.New(cerr.Validation, "zap request requires a recipient pubkey")
	}
	if len(z.Relays) == 0 {
		return event.Event{}, cerr.New(cerr.Validation, "zap request requires at least one relay")
	}

	b := event.New(KindZapRequest).Content(z.Comment).Mention(z.RecipientPubKey, "", "")
	b = b.Tag(append([]string{"relays"}, z.Relays...)...)
	if z.AmountMsats > 0 {
		b = b.Tag("amount", strconv.FormatInt(z.AmountMsats, 10))
	}
	if z.LNURL != "" {
		b = b.Tag("lnurl", z.LNURL)
	}
	if z.EventID != "" {
		b = b.ReplyTo(z.EventID, "", "")
	}
	if z.AddressPointer != "" {
		b = b.Tag("a", z.AddressPointer)
	}
	return b.Unsigned(), nil
}

// ZapReceipt is the result of parsing a kind-9735 event.
type ZapReceipt struct {
	RecipientPubKey string
	SenderPubKey    string // from the "P" tag, if the zap request carried one; "" otherwise
	EventID         string
	Bolt11          string
	Preimage        string
	Description     string // the original zap request JSON, verbatim
	AmountMsats     int64
}

// ParseZapReceipt extracts the conventional fields from a kind-9735
// event's tags (spec's glossary: bolt11, description, preimage, amount).
func ParseZapReceipt(ev event.Event) (ZapReceipt, error) {
	if ev.Kind != KindZapReceipt {
		return ZapReceipt{}, cerr.New(cerr.Validation, "expected kind 9735 zap receipt")
	}

	var r ZapReceipt
	if t, ok := ev.Tags.Find("p"); ok {
		r.RecipientPubKey = t.Value(0)
	}
	if t, ok := ev.Tags.Find("P"); ok {
		r.SenderPubKey = t.Value(0)
	}
	if t, ok := ev.Tags.Find("e"); ok {
		r.EventID = t.Value(0)
	}
	if t, ok := ev.Tags.Find("bolt11"); ok {
		r.Bolt11 = t.Value(0)
	}
	if t, ok := ev.Tags.Find("preimage"); ok {
		r.Preimage = t.Value(0)
	}
	if t, ok := ev.Tags.Find("description"); ok {
		r.Description = t.Value(0)
	}
	if t, ok := ev.Tags.Find("amount"); ok {
		amount, err := strconv.ParseInt(t.Value(0), 10, 64)
		if err == nil {
			r.AmountMsats = amount
		}
	}
	if r.RecipientPubKey == "" {
		return ZapReceipt{}, cerr.New(cerr.Validation, "zap receipt missing recipient p tag")
	}
	if r.Bolt11 == "" {
		return ZapReceipt{}, cerr.New(cerr.Validation, "zap receipt missing bolt11 tag")
	}
	return r, nil
}

// Package nip21 implements the nostr: URI scheme and an in-text reference
// scanner over it (spec §4.3, C5). Grounded in the same std-library regexp
// scanning style the teacher uses for validation in pkg/models/utils.go,
// generalized here to a text-wide scan rather than a single-field check.
package nip21

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cosanostra/pkg/bech32"
	"cosanostra/pkg/cerr"
	"cosanostra/pkg/event"
)

// Prefixes accepted before a bech32 entity (spec §4.3).
var prefixes = []string{"nostr://", "web+nostr:", "nostr:"}

// entityPattern matches one bech32 entity of a kind nostr: URIs may carry.
// nsec is deliberately excluded: the scanner must never parse or emit it.
var entityPattern = regexp.MustCompile(`(?:npub|note|nprofile|nevent|nrelay|naddr)1[023456789acdefghjklmnpqrstuvwxyz]+`)

// ReferenceKind tags which entity variant a Reference decodes.
type ReferenceKind int

const (
	ReferenceProfile ReferenceKind = iota
	ReferenceEvent
	ReferenceAddress
	ReferenceRelay
)

// Reference is one decoded nostr: citation found in free text, along with
// the byte range of the matched substring in the original text.
type Reference struct {
	Kind    ReferenceKind
	Raw     string
	Start   int
	End     int
	Profile bech32.Profile
	Event   bech32.EventPointer
	Address bech32.Address
	Relay   bech32.Relay
}

// Parse strips a recognized nostr: prefix from s and decodes the remaining
// bech32 entity, rejecting nsec outright.
func Parse(s string) (Reference, error) {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return decodeEntity(strings.TrimPrefix(s, p))
		}
	}
	return Reference{}, cerr.New(cerr.Validation, "not a recognized nostr URI")
}

func decodeEntity(entity string) (Reference, error) {
	hrp, err := bech32.HRPOf(entity)
	if err != nil {
		return Reference{}, err
	}
	switch hrp {
	case bech32.HRPSecretKey:
		return Reference{}, cerr.New(cerr.Validation, "nsec is not a valid URI reference")
	case bech32.HRPProfile:
		p, err := bech32.DecodeProfile(entity)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: ReferenceProfile, Raw: entity, Profile: p}, nil
	case bech32.HRPPubKey:
		pub, err := bech32.DecodePublicKey(entity)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: ReferenceProfile, Raw: entity, Profile: bech32.Profile{PubKey: pub}}, nil
	case bech32.HRPEvent:
		e, err := bech32.DecodeEventPointer(entity)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: ReferenceEvent, Raw: entity, Event: e}, nil
	case bech32.HRPNote:
		id, err := bech32.DecodeNote(entity)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: ReferenceEvent, Raw: entity, Event: bech32.EventPointer{ID: id}}, nil
	case bech32.HRPAddress:
		a, err := bech32.DecodeAddress(entity)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: ReferenceAddress, Raw: entity, Address: a}, nil
	case bech32.HRPRelay:
		r, err := bech32.DecodeRelay(entity)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: ReferenceRelay, Raw: entity, Relay: r}, nil
	default:
		return Reference{}, cerr.New(cerr.Validation, "unsupported entity: "+hrp)
	}
}

// Scan finds every nostr: citation in free-form text, decoding each one in
// order. Entities that fail to decode (bad checksum, nsec, unsupported HRP)
// are skipped rather than aborting the whole scan, since free text may
// contain near-misses that aren't real citations.
func Scan(text string) []Reference {
	var out []Reference
	for _, p := range prefixes {
		offset := 0
		for {
			idx := strings.Index(text[offset:], p)
			if idx < 0 {
				break
			}
			start := offset + idx
			if p == "nostr:" && strings.HasSuffix(text[:start], "web+") {
				offset = start + len(p)
				continue
			}
			rest := text[start+len(p):]
			loc := entityPattern.FindStringIndex(rest)
			if loc == nil || loc[0] != 0 {
				offset = start + len(p)
				continue
			}
			entity := rest[loc[0]:loc[1]]
			ref, err := decodeEntity(entity)
			end := start + len(p) + loc[1]
			if err == nil {
				ref.Start = start
				ref.End = end
				ref.Raw = text[start:end]
				out = append(out, ref)
			}
			offset = end
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Tags returns the conventional p/e/a tags a ReferenceKind requires when an
// event's content cites it (spec §4.3).
func (r Reference) Tags() event.Tags {
	switch r.Kind {
	case ReferenceProfile:
		return event.Tags{{"p", r.Profile.PubKey}}
	case ReferenceEvent:
		return event.Tags{{"e", r.Event.ID}}
	case ReferenceAddress:
		coord := formatAddressCoordinate(r.Address)
		return event.Tags{{"a", coord}}
	default:
		return nil
	}
}

func formatAddressCoordinate(a bech32.Address) string {
	return strconv.FormatUint(uint64(a.Kind), 10) + ":" + a.Author + ":" + a.Identifier
}

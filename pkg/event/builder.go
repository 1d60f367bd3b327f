package event

import (
	"strconv"
	"time"
)

// Builder assembles an unsigned Event through chainable mutators, then
// hands off to a signer (pkg/keys.KeyPair.Sign) to produce the final
// signed Event. Mirrors the teacher's direct struct-literal construction
// in pkg/relay but generalizes it into the fluent builder spec §4.1 calls
// for.
type Builder struct {
	ev Event
}

// New starts a builder for the given kind with an empty tag set and
// created_at defaulted to now; both are overridable before Unsigned.
func New(kind int) *Builder {
	return &Builder{ev: Event{
		Kind:      kind,
		CreatedAt: time.Now().Unix(),
		Tags:      Tags{},
	}}
}

// Content sets the event's content field.
func (b *Builder) Content(content string) *Builder {
	b.ev.Content = content
	return b
}

// Kind overrides the event kind set in New.
func (b *Builder) Kind(kind int) *Builder {
	b.ev.Kind = kind
	return b
}

// CreatedAt overrides the default "now" timestamp.
func (b *Builder) CreatedAt(ts int64) *Builder {
	b.ev.CreatedAt = ts
	return b
}

// Tag appends an arbitrary tag.
func (b *Builder) Tag(tag ...string) *Builder {
	b.ev.Tags = append(b.ev.Tags, Tag(tag))
	return b
}

// Tags appends every given tag.
func (b *Builder) Tags(tags ...Tag) *Builder {
	b.ev.Tags = append(b.ev.Tags, tags...)
	return b
}

// ReplyTo appends an "e" tag referencing eventID, with an optional relay
// hint and NIP-10 marker ("reply", "root", "mention").
func (b *Builder) ReplyTo(eventID, relayHint, marker string) *Builder {
	tag := Tag{"e", eventID}
	if relayHint != "" || marker != "" {
		tag = append(tag, relayHint)
	}
	if marker != "" {
		tag = append(tag, marker)
	}
	return b.Tag(tag...)
}

// Mention appends a "p" tag referencing pubkey, with an optional relay
// hint and petname.
func (b *Builder) Mention(pubkey, relayHint, petname string) *Builder {
	tag := Tag{"p", pubkey}
	if relayHint != "" || petname != "" {
		tag = append(tag, relayHint)
	}
	if petname != "" {
		tag = append(tag, petname)
	}
	return b.Tag(tag...)
}

// Hashtag appends a "t" tag.
func (b *Builder) Hashtag(tag string) *Builder {
	return b.Tag("t", tag)
}

// Identifier appends a "d" tag, required for parameterized-replaceable
// kinds (20000-29999, 30000-39999).
func (b *Builder) Identifier(d string) *Builder {
	return b.Tag("d", d)
}

// Expiration appends an "expiration" tag with a unix-seconds timestamp
// (NIP-40).
func (b *Builder) Expiration(ts int64) *Builder {
	return b.Tag("expiration", strconv.FormatInt(ts, 10))
}

// ContentWarning appends a "content-warning" tag, with an optional reason.
func (b *Builder) ContentWarning(reason string) *Builder {
	if reason == "" {
		return b.Tag("content-warning")
	}
	return b.Tag("content-warning", reason)
}

// Unsigned returns the event assembled so far, without signing it.
func (b *Builder) Unsigned() Event {
	return b.ev
}

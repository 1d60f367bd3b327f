// Package nip51 implements lists: mute, pin, bookmark, and generic
// categorized lists, with optionally NIP-44-encrypted private entries
// (spec's SUPPLEMENTED FEATURES, C13d). Public entries are plain tags on
// the event per spec §4.1's tag conventions; private entries are a JSON
// tag array NIP-44-encrypted (self to self) into the event content,
// mirroring the gift-wrap encrypt/decrypt calls in pkg/nip59.
package nip51

import (
	"encoding/json"
	"time"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/event"
	"cosanostra/pkg/keys"
	"cosanostra/pkg/nip44"
)

const (
	KindMuteList     = 10000
	KindPinList      = 10001
	KindRelayList    = 10002
	KindBookmarkList = 10003
	KindCategorized  = 30000
)

// List is a set of public and private tags for one of the fixed list
// kinds, or a categorized (parameterized-replaceable) list identified by
// Identifier.
type List struct {
	Kind          int
	Identifier    string // required for KindCategorized ("d" tag)
	PublicTags    event.Tags
	PrivateTags   event.Tags
}

// Build assembles the unsigned list event. If PrivateTags is non-empty,
// owner's keypair is used to NIP-44-self-encrypt them (ECDH of a key with
// its own public key) into the content field, per the standard Nostr
// convention for private list entries.
func Build(l List, owner *keys.KeyPair) (event.Event, error) {
	if l.Kind == KindCategorized && l.Identifier == "" {
		return event.Event{}, cerr.New(cerr.Validation, "categorized list requires a \"d\" identifier")
	}

	tags := append(event.Tags{}, l.PublicTags...)
	if l.Kind == KindCategorized {
		tags = append(tags, event.Tag{"d", l.Identifier})
	}

	content := ""
	if len(l.PrivateTags) > 0 {
		plaintext, err := json.Marshal(l.PrivateTags)
		if err != nil {
			return event.Event{}, cerr.Wrap(cerr.Serialization, "marshal private list tags", err)
		}
		ciphertext, err := nip44.Encrypt(owner.PrivateKeyHex(), owner.PublicKeyHex(), string(plaintext))
		if err != nil {
			return event.Event{}, err
		}
		content = ciphertext
	}

	return event.Event{
		Kind:      l.Kind,
		CreatedAt: time.Now().Unix(),
		Tags:      tags,
		Content:   content,
	}, nil
}

// DecryptPrivateTags recovers the private tag set from ev.Content, which
// must have been encrypted by Build with the same owner keypair.
func DecryptPrivateTags(ev event.Event, owner *keys.KeyPair) (event.Tags, error) {
	if ev.Content == "" {
		return nil, nil
	}
	plaintext, err := nip44.Decrypt(owner.PrivateKeyHex(), owner.PublicKeyHex(), ev.Content)
	if err != nil {
		return nil, err
	}
	var tags event.Tags
	if err := json.Unmarshal([]byte(plaintext), &tags); err != nil {
		return nil, cerr.Wrap(cerr.Serialization, "unmarshal private list tags", err)
	}
	return tags, nil
}

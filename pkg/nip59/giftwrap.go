// Package nip59 implements gift wrap: rumor -> seal -> gift-wrap layering
// with ephemeral keys and jittered timestamps, used for private direct
// messages and other sealed events (spec §4.5, C7). Grounded on
// other_examples/7bb48688_pinpox-nitrous__nostr_dm.go.go's DM send/receive
// flow built on go-nostr's nip17/nip59 packages; this package reimplements
// that layering directly against pkg/event, pkg/keys, and pkg/nip44 rather
// than depending on go-nostr itself.
package nip59

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"strconv"
	"time"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/event"
	"cosanostra/pkg/keys"
	"cosanostra/pkg/nip44"
)

// KindSeal and KindGiftWrap are the fixed kinds used at each layer (spec
// §4.5).
const (
	KindSeal     = 13
	KindGiftWrap = 1059
)

const jitterWindow = 2 * 24 * time.Hour

// Wrap is the result of gift-wrapping a rumor for one recipient.
type Wrap struct {
	GiftWrap event.Event
	Seal     event.Event
}

// CreateGiftWrap builds the seal and gift-wrap layers around rumor for
// recipientPubKey, per spec §4.5. rumor must be unsigned. relayHint and
// expiration are optional; pass "" and nil to omit them.
func CreateGiftWrap(rumor event.Event, sender *keys.KeyPair, recipientPubKey, relayHint string, expiration *int64) (Wrap, error) {
	if rumor.IsSigned() {
		return Wrap{}, cerr.New(cerr.Validation, "rumor must be unsigned")
	}

	rumorJSON, err := json.Marshal(rumor)
	if err != nil {
		return Wrap{}, cerr.Wrap(cerr.Serialization, "marshal rumor", err)
	}

	sealCiphertext, err := nip44.Encrypt(sender.PrivateKeyHex(), recipientPubKey, string(rumorJSON))
	if err != nil {
		return Wrap{}, err
	}
	sealCreatedAt, err := jitteredTimestamp()
	if err != nil {
		return Wrap{}, err
	}
	seal, err := sender.Sign(event.Event{
		Kind:      KindSeal,
		CreatedAt: sealCreatedAt,
		Tags:      event.Tags{},
		Content:   sealCiphertext,
	})
	if err != nil {
		return Wrap{}, err
	}

	sealJSON, err := json.Marshal(seal)
	if err != nil {
		return Wrap{}, cerr.Wrap(cerr.Serialization, "marshal seal", err)
	}

	ephemeral, err := keys.Generate()
	if err != nil {
		return Wrap{}, err
	}
	defer ephemeral.Zero()

	wrapCiphertext, err := nip44.Encrypt(ephemeral.PrivateKeyHex(), recipientPubKey, string(sealJSON))
	if err != nil {
		return Wrap{}, err
	}

	tags := event.Tags{{"p", recipientPubKey}}
	if relayHint != "" {
		tags[0] = append(tags[0], relayHint)
	}
	if expiration != nil {
		tags = append(tags, tagExpiration(*expiration))
	}

	wrapCreatedAt, err := jitteredTimestamp()
	if err != nil {
		return Wrap{}, err
	}
	giftWrap, err := ephemeral.Sign(event.Event{
		Kind:      KindGiftWrap,
		CreatedAt: wrapCreatedAt,
		Tags:      tags,
		Content:   wrapCiphertext,
	})
	if err != nil {
		return Wrap{}, err
	}

	return Wrap{GiftWrap: giftWrap, Seal: seal}, nil
}

// CreateDirectMessageWraps builds gift wraps addressed to both the
// recipient and the sender, so the sender retains a readable copy of
// their own outgoing DM history (spec §4.5 point 5, for kind 14/15
// rumors).
func CreateDirectMessageWraps(rumor event.Event, sender *keys.KeyPair, recipientPubKey, relayHint string, expiration *int64) (toRecipient, toSender Wrap, err error) {
	toRecipient, err = CreateGiftWrap(rumor, sender, recipientPubKey, relayHint, expiration)
	if err != nil {
		return Wrap{}, Wrap{}, err
	}
	toSender, err = CreateGiftWrap(rumor, sender, sender.PublicKeyHex(), relayHint, expiration)
	if err != nil {
		return Wrap{}, Wrap{}, err
	}
	return toRecipient, toSender, nil
}

// UnwrapGiftWrap reverses the layering with the recipient's private key,
// returning the inner rumor. It requires the inner event to be a kind-13
// seal and checks that the seal's pubkey matches the rumor's pubkey
// (sender binding, spec §4.5).
func UnwrapGiftWrap(giftWrap event.Event, recipientPrivKeyHex string) (rumor event.Event, seal event.Event, err error) {
	if giftWrap.Kind != KindGiftWrap {
		return event.Event{}, event.Event{}, cerr.New(cerr.Validation, "expected kind 1059 gift wrap")
	}

	sealJSON, err := nip44.Decrypt(recipientPrivKeyHex, giftWrap.PubKey, giftWrap.Content)
	if err != nil {
		return event.Event{}, event.Event{}, err
	}
	if err := json.Unmarshal([]byte(sealJSON), &seal); err != nil {
		return event.Event{}, event.Event{}, cerr.Wrap(cerr.Serialization, "unmarshal seal", err)
	}
	if seal.Kind != KindSeal {
		return event.Event{}, event.Event{}, cerr.New(cerr.Validation, "expected kind 13 seal inside gift wrap")
	}
	if err := keys.Verify(seal); err != nil {
		return event.Event{}, event.Event{}, err
	}

	rumorJSON, err := nip44.Decrypt(recipientPrivKeyHex, seal.PubKey, seal.Content)
	if err != nil {
		return event.Event{}, event.Event{}, err
	}
	if err := json.Unmarshal([]byte(rumorJSON), &rumor); err != nil {
		return event.Event{}, event.Event{}, cerr.Wrap(cerr.Serialization, "unmarshal rumor", err)
	}
	if rumor.PubKey != seal.PubKey {
		return event.Event{}, event.Event{}, cerr.New(cerr.Validation, "seal pubkey does not match rumor pubkey")
	}

	return rumor, seal, nil
}

func tagExpiration(ts int64) event.Tag {
	return event.Tag{"expiration", strconv.FormatInt(ts, 10)}
}

// jitteredTimestamp returns a unix-second timestamp drawn uniformly from
// [now - 2 days, now], used for both seal and gift-wrap created_at values
// so relays can't correlate the real send time (spec §4.5).
func jitteredTimestamp() (int64, error) {
	now := time.Now().Unix()
	windowSeconds := int64(jitterWindow / time.Second)
	n, err := rand.Int(rand.Reader, big.NewInt(windowSeconds+1))
	if err != nil {
		return 0, cerr.Wrap(cerr.Crypto, "read CSPRNG for timestamp jitter", err)
	}
	return now - n.Int64(), nil
}

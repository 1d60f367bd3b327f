package wire

import (
	"encoding/json"
	"strings"
	"testing"

	"cosanostra/pkg/event"
	"cosanostra/pkg/filter"
)

func TestEncodeEventMessage(t *testing.T) {
	ev := event.Event{
		ID:        strings.Repeat("aa", 32),
		PubKey:    strings.Repeat("bb", 32),
		CreatedAt: 1700000000,
		Kind:      1,
		Tags:      event.Tags{},
		Content:   "gm",
		Sig:       strings.Repeat("cc", 64),
	}
	data, err := NewEventMessage(ev).Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		t.Fatal(err)
	}
	if len(arr) != 2 {
		t.Fatalf("expected 2-element array, got %d", len(arr))
	}
	var tag string
	if err := json.Unmarshal(arr[0], &tag); err != nil || tag != "EVENT" {
		t.Fatalf("discriminant = %q, want EVENT", tag)
	}
}

func TestEncodeReqMessageWithFilters(t *testing.T) {
	f := filter.Filter{Kinds: []int{1}}
	data, err := NewReqMessage("sub1", f).Encode()
	if err != nil {
		t.Fatal(err)
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		t.Fatal(err)
	}
	if len(arr) != 3 {
		t.Fatalf("expected [\"REQ\", subId, filter], got %d elements", len(arr))
	}
}

func TestEncodeCloseMessage(t *testing.T) {
	data, err := NewCloseMessage("sub1").Encode()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["CLOSE","sub1"]` {
		t.Fatalf("got %s", data)
	}
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	if _, err := ClientMessage{Type: "BOGUS"}.Encode(); err == nil {
		t.Fatal("expected unknown client message type to be rejected")
	}
}

func TestDecodeRelayMessageEvent(t *testing.T) {
	frame := `["EVENT","sub1",{"id":"` + strings.Repeat("aa", 32) + `","pubkey":"` + strings.Repeat("bb", 32) +
		`","created_at":1700000000,"kind":1,"tags":[],"content":"hi","sig":"` + strings.Repeat("cc", 64) + `"}]`
	msg, err := DecodeRelayMessage([]byte(frame))
	if err != nil {
		t.Fatalf("DecodeRelayMessage: %v", err)
	}
	if msg.Kind != RelayEvent || msg.SubID != "sub1" || msg.Event.Content != "hi" {
		t.Fatalf("unexpected decode: %+v", msg)
	}
}

func TestDecodeRelayMessageOKWithAndWithoutMessage(t *testing.T) {
	msg, err := DecodeRelayMessage([]byte(`["OK","` + strings.Repeat("11", 32) + `",true]`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != RelayOK || !msg.OK || msg.Message != "" {
		t.Fatalf("unexpected decode: %+v", msg)
	}

	msg2, err := DecodeRelayMessage([]byte(`["OK","` + strings.Repeat("11", 32) + `",false,"rejected: spam"]`))
	if err != nil {
		t.Fatal(err)
	}
	if msg2.OK || msg2.Message != "rejected: spam" {
		t.Fatalf("unexpected decode: %+v", msg2)
	}
}

func TestDecodeRelayMessageEOSEAndNoticeAndAuth(t *testing.T) {
	eose, err := DecodeRelayMessage([]byte(`["EOSE","sub1"]`))
	if err != nil || eose.Kind != RelayEOSE || eose.SubID != "sub1" {
		t.Fatalf("EOSE decode failed: %v, %+v", err, eose)
	}
	notice, err := DecodeRelayMessage([]byte(`["NOTICE","rate limited"]`))
	if err != nil || notice.Kind != RelayNotice || notice.Message != "rate limited" {
		t.Fatalf("NOTICE decode failed: %v, %+v", err, notice)
	}
	auth, err := DecodeRelayMessage([]byte(`["AUTH","challenge-string"]`))
	if err != nil || auth.Kind != RelayAuth || auth.Challenge != "challenge-string" {
		t.Fatalf("AUTH decode failed: %v, %+v", err, auth)
	}
}

func TestDecodeRelayMessageRejectsMalformedFrame(t *testing.T) {
	if _, err := DecodeRelayMessage([]byte(`["EVENT","sub1"]`)); err == nil {
		t.Fatal("expected malformed EVENT frame to be rejected")
	}
	if _, err := DecodeRelayMessage([]byte(`["OK","id",123]`)); err == nil {
		t.Fatal("expected non-bool OK field to be rejected")
	}
	if _, err := DecodeRelayMessage([]byte(`["BOGUS"]`)); err == nil {
		t.Fatal("expected unknown discriminant to be rejected")
	}
}

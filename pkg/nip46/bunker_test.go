package nip46

import (
	"strings"
	"testing"
)

func TestParseBunkerURL(t *testing.T) {
	pubkey := strings.Repeat("ab", 32)
	raw := "bunker://" + pubkey + "?relay=wss://relay1.example&relay=wss://relay2.example&secret=s3cr3t"

	ptr, err := ParseBunkerURL(raw)
	if err != nil {
		t.Fatalf("ParseBunkerURL: %v", err)
	}
	if ptr.RemoteSignerPubKey != pubkey {
		t.Fatalf("pubkey = %q, want %q", ptr.RemoteSignerPubKey, pubkey)
	}
	if len(ptr.Relays) != 2 {
		t.Fatalf("expected 2 relays, got %d", len(ptr.Relays))
	}
	if ptr.Secret != "s3cr3t" {
		t.Fatalf("secret = %q", ptr.Secret)
	}
}

func TestParseBunkerURLNormalizesPubKeyCase(t *testing.T) {
	pubkey := strings.Repeat("AB", 32)
	raw := "bunker://" + pubkey + "?relay=wss://relay.example"
	ptr, err := ParseBunkerURL(raw)
	if err != nil {
		t.Fatalf("ParseBunkerURL: %v", err)
	}
	if ptr.RemoteSignerPubKey != strings.ToLower(pubkey) {
		t.Fatalf("pubkey not lowercased: %q", ptr.RemoteSignerPubKey)
	}
}

func TestParseBunkerURLRejectsWrongScheme(t *testing.T) {
	if _, err := ParseBunkerURL("nostrconnect://" + strings.Repeat("ab", 32)); err == nil {
		t.Fatal("expected non-bunker scheme to be rejected")
	}
}

func TestParseBunkerURLRequiresRelay(t *testing.T) {
	raw := "bunker://" + strings.Repeat("ab", 32)
	if _, err := ParseBunkerURL(raw); err == nil {
		t.Fatal("expected missing relay query param to be rejected")
	}
}

func TestParseBunkerURLRejectsBadPubKey(t *testing.T) {
	raw := "bunker://not-hex?relay=wss://relay.example"
	if _, err := ParseBunkerURL(raw); err == nil {
		t.Fatal("expected non-hex host to be rejected")
	}
}

func TestRequestResponseRoundTrip(t *testing.T) {
	req := Request{ID: "1", Method: "sign_event", Params: []string{`{"kind":1}`}}
	encoded, err := MarshalRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(encoded, "sign_event") {
		t.Fatalf("encoded request missing method: %s", encoded)
	}

	resp, err := UnmarshalResponse(`{"id":"1","result":"ok"}`)
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != "1" || resp.Result != "ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

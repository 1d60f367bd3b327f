// Package nip46 implements the NIP-46 remote-signing protocol: bunker://
// URI parsing and the JSON-RPC request/response envelope carried inside
// gift-wrapped kind-24133 events (spec's SUPPLEMENTED FEATURES, C13a).
// Grounded on other_examples/2d704f6c_vcavallo-nostr-hypermedia__nip46.go.go's
// BunkerSession/ParseBunkerURL/NIP46Request/NIP46Response, trimmed of its
// server-side session store and rate limiting (out of scope for a
// client-side signing library). The package covers URI parsing and the
// envelope types only; encrypting, gift-wrapping and sending the events
// is left to callers.
package nip46

import (
	"encoding/json"
	"net/url"
	"strings"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/primitives"
)

// KindRequest is the event kind gift-wrapped requests/responses travel as.
const KindRequest = 24133

// BunkerPointer is the parsed form of a bunker:// connection string.
type BunkerPointer struct {
	RemoteSignerPubKey string
	Relays             []string
	Secret             string
}

// ParseBunkerURL parses "bunker://<signer-pubkey>?relay=<url>(&relay=<url>)*(&secret=<s>)?"
// per spec's glossary entry for the NIP-46 bunker URI.
func ParseBunkerURL(raw string) (BunkerPointer, error) {
	if !strings.HasPrefix(raw, "bunker://") {
		return BunkerPointer{}, cerr.New(cerr.Validation, "bunker URL must start with bunker://")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return BunkerPointer{}, cerr.Wrap(cerr.Validation, "parse bunker URL", err)
	}

	pubkey := u.Host
	if !primitives.IsHex(pubkey, primitives.KeyHexLen) {
		return BunkerPointer{}, cerr.New(cerr.Validation, "bunker signer pubkey must be 64 hex characters")
	}

	relays := u.Query()["relay"]
	if len(relays) == 0 {
		return BunkerPointer{}, cerr.New(cerr.Validation, "bunker URL requires at least one relay")
	}

	return BunkerPointer{
		RemoteSignerPubKey: strings.ToLower(pubkey),
		Relays:             relays,
		Secret:             u.Query().Get("secret"),
	}, nil
}

// Request is a JSON-RPC request sent to the remote signer (connect,
// sign_event, get_public_key, nip44_encrypt, nip44_decrypt, ping).
type Request struct {
	ID     string   `json:"id"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}

// Response is a JSON-RPC response from the remote signer.
type Response struct {
	ID     string `json:"id"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MarshalRequest serializes r as compact JSON, the plaintext that is then
// NIP-44 encrypted and gift-wrapped for transport.
func MarshalRequest(r Request) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", cerr.Wrap(cerr.Serialization, "marshal nip46 request", err)
	}
	return string(b), nil
}

// UnmarshalResponse parses a decrypted JSON-RPC response payload.
func UnmarshalResponse(data string) (Response, error) {
	var resp Response
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return Response{}, cerr.Wrap(cerr.Serialization, "unmarshal nip46 response", err)
	}
	return resp, nil
}

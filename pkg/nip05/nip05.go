// Package nip05 implements client-side resolution of NIP-05 identifiers
// (name@domain) against a domain's well-known JSON document. Per spec
// §1's non-goals, HTTPS discovery itself is treated as a pluggable
// collaborator: callers supply the *http.Client, this package only shapes
// the request URL and parses the response.
package nip05

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"cosanostra/pkg/cerr"
)

// Document is the JSON shape served at /.well-known/nostr.json.
type Document struct {
	Names  map[string]string   `json:"names"`
	Relays map[string][]string `json:"relays,omitempty"`
}

// Result is the outcome of resolving one identifier.
type Result struct {
	PubKey string
	Relays []string
}

// Resolve fetches and parses the well-known document for identifier
// ("name@domain" or "_@domain" for the root identifier), using client to
// perform the HTTP GET.
func Resolve(ctx context.Context, client *http.Client, identifier string) (Result, error) {
	name, domain, err := splitIdentifier(identifier)
	if err != nil {
		return Result{}, err
	}

	u := url.URL{
		Scheme:   "https",
		Host:     domain,
		Path:     "/.well-known/nostr.json",
		RawQuery: "name=" + url.QueryEscape(name),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, cerr.Wrap(cerr.Network, "build nip-05 request", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{}, cerr.Wrap(cerr.Network, "fetch nip-05 document", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, cerr.New(cerr.Network, "nip-05 document fetch returned non-200 status")
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Result{}, cerr.Wrap(cerr.Serialization, "decode nip-05 document", err)
	}

	pubKey, ok := doc.Names[name]
	if !ok {
		return Result{}, cerr.New(cerr.Validation, "name not present in nip-05 document")
	}

	return Result{PubKey: pubKey, Relays: doc.Relays[pubKey]}, nil
}

func splitIdentifier(identifier string) (name, domain string, err error) {
	at := strings.LastIndexByte(identifier, '@')
	if at < 0 {
		return "", "", cerr.New(cerr.Validation, "nip-05 identifier must contain '@'")
	}
	name, domain = identifier[:at], identifier[at+1:]
	if name == "" {
		name = "_"
	}
	if domain == "" {
		return "", "", cerr.New(cerr.Validation, "nip-05 identifier missing domain")
	}
	return name, domain, nil
}

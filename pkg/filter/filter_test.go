package filter

import (
	"encoding/json"
	"strings"
	"testing"

	"cosanostra/pkg/event"
)

func TestMatchesAllPopulatedFields(t *testing.T) {
	ev := &event.Event{
		ID:        strings.Repeat("aa", 32),
		PubKey:    strings.Repeat("bb", 32),
		CreatedAt: 1000,
		Kind:      1,
		Tags:      event.Tags{{"e", strings.Repeat("cc", 32)}},
	}
	limit := 10
	f := Filter{
		Authors:    []string{strings.Repeat("bb", 32)},
		Kinds:      []int{1, 2},
		TagFilters: map[string][]string{"e": {strings.Repeat("cc", 32)}},
		Limit:      &limit,
	}
	if !f.Matches(ev) {
		t.Fatal("expected event to match filter")
	}
}

func TestMatchesRejectsOnKindMismatch(t *testing.T) {
	ev := &event.Event{PubKey: strings.Repeat("bb", 32), Kind: 5}
	f := Filter{Kinds: []int{1, 2}}
	if f.Matches(ev) {
		t.Fatal("expected filter to reject mismatched kind")
	}
}

func TestMatchesRejectsOnMissingTagValue(t *testing.T) {
	ev := &event.Event{Tags: event.Tags{{"e", "someid"}}}
	f := Filter{TagFilters: map[string][]string{"e": {"otherid"}}}
	if f.Matches(ev) {
		t.Fatal("expected filter to reject when no tag value matches")
	}
}

func TestMarshalJSONMergesTagFilters(t *testing.T) {
	f := Filter{
		Kinds:      []int{1},
		TagFilters: map[string][]string{"e": {"abc"}, "p": {"def"}},
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["#e"]; !ok {
		t.Fatalf("expected \"#e\" key in encoded filter, got %s", data)
	}
	if _, ok := raw["#p"]; !ok {
		t.Fatalf("expected \"#p\" key in encoded filter, got %s", data)
	}
	if _, ok := raw["kinds"]; !ok {
		t.Fatalf("expected \"kinds\" key in encoded filter, got %s", data)
	}
}

func TestUnmarshalJSONRoundTripPreservesUnknownTagKeys(t *testing.T) {
	raw := `{"kinds":[1,2],"#t":["nostr"],"#x":["custom"]}`
	var f Filter
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(f.Kinds) != 2 || f.Kinds[0] != 1 || f.Kinds[1] != 2 {
		t.Fatalf("kinds = %v", f.Kinds)
	}
	if len(f.TagFilters["t"]) != 1 || f.TagFilters["t"][0] != "nostr" {
		t.Fatalf("#t tag filter = %v", f.TagFilters["t"])
	}
	if len(f.TagFilters["x"]) != 1 || f.TagFilters["x"][0] != "custom" {
		t.Fatalf("unrecognized #x tag filter not preserved: %v", f.TagFilters["x"])
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	since := int64(100)
	until := int64(200)
	limit := 5
	original := Filter{
		IDs:        []string{strings.Repeat("11", 32)},
		Authors:    []string{strings.Repeat("22", 32)},
		Kinds:      []int{1},
		Since:      &since,
		Until:      &until,
		Limit:      &limit,
		TagFilters: map[string][]string{"e": {strings.Repeat("33", 32)}},
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Filter
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.IDs[0] != original.IDs[0] || decoded.Authors[0] != original.Authors[0] {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if *decoded.Since != since || *decoded.Until != until || *decoded.Limit != limit {
		t.Fatalf("round trip numeric mismatch: %+v", decoded)
	}
	if decoded.TagFilters["e"][0] != strings.Repeat("33", 32) {
		t.Fatalf("tag filter round trip mismatch: %v", decoded.TagFilters)
	}
}

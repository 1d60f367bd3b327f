// Package filter implements the Nostr subscription filter (spec §4.10,
// C12): JSON field names differ from in-memory names for tag indices, and
// unknown "#<x>" fields must survive an encode/decode round trip.
// Grounded on the teacher's pkg/models/event.go Filter struct and its
// MatchesFilter in pkg/models/utils.go, generalized to the full tag-index
// field set and the JSON-name translation the teacher's relay-only Filter
// never needed.
package filter

import (
	"encoding/json"
	"time"

	"cosanostra/pkg/event"
)

// Filter is a subscription predicate: every populated field must match
// (AND); within a list-valued field, any element suffices (OR).
type Filter struct {
	IDs        []string
	Authors    []string
	Kinds      []int
	Since      *int64
	Until      *int64
	Limit      *int
	TagFilters map[string][]string // tag name (single letter, no '#') -> accepted values
}

// SinceTime sets Since from a wall-clock time, truncating to whole seconds
// (spec §4.10).
func (f *Filter) SinceTime(t time.Time) { v := t.Unix(); f.Since = &v }

// UntilTime sets Until from a wall-clock time, truncating to whole
// seconds.
func (f *Filter) UntilTime(t time.Time) { v := t.Unix(); f.Until = &v }

// Matches reports whether ev satisfies every populated field of f.
func (f *Filter) Matches(ev *event.Event) bool {
	if len(f.IDs) > 0 && !containsString(f.IDs, ev.ID) {
		return false
	}
	if len(f.Authors) > 0 && !containsString(f.Authors, ev.PubKey) {
		return false
	}
	if len(f.Kinds) > 0 && !containsInt(f.Kinds, ev.Kind) {
		return false
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	for tagName, accepted := range f.TagFilters {
		if !matchesAnyTagValue(ev, tagName, accepted) {
			return false
		}
	}
	return true
}

func matchesAnyTagValue(ev *event.Event, tagName string, accepted []string) bool {
	for _, t := range ev.Tags {
		if t.Name() != tagName {
			continue
		}
		if len(t) < 2 {
			continue
		}
		if containsString(accepted, t[1]) {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}

// wireFilter is the on-the-wire JSON shape: fixed fields plus arbitrary
// "#<letter>" keys for tag filters.
type wireFilter struct {
	IDs     []string `json:"ids,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	Since   *int64   `json:"since,omitempty"`
	Until   *int64   `json:"until,omitempty"`
	Limit   *int     `json:"limit,omitempty"`
}

// MarshalJSON translates in-memory TagFilters ("e") into wire keys ("#e")
// alongside the fixed fields, merging both into one flat JSON object.
func (f Filter) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(wireFilter{
		IDs: f.IDs, Authors: f.Authors, Kinds: f.Kinds,
		Since: f.Since, Until: f.Until, Limit: f.Limit,
	})
	if err != nil {
		return nil, err
	}
	if len(f.TagFilters) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for name, values := range f.TagFilters {
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		merged["#"+name] = encoded
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reverses MarshalJSON: fixed fields populate their struct
// slots, and every "#<x>" key is preserved verbatim in TagFilters, even
// for tag names the rest of this library doesn't otherwise interpret.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var wire wireFilter
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	f.IDs, f.Authors, f.Kinds = wire.IDs, wire.Authors, wire.Kinds
	f.Since, f.Until, f.Limit = wire.Since, wire.Until, wire.Limit

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if len(key) < 2 || key[0] != '#' {
			continue
		}
		var values []string
		if err := json.Unmarshal(value, &values); err != nil {
			return err
		}
		if f.TagFilters == nil {
			f.TagFilters = make(map[string][]string)
		}
		f.TagFilters[key[1:]] = values
	}
	return nil
}

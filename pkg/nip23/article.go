// Package nip23 implements long-form content articles, kind 30023
// (published) and kind 30024 (draft) (spec's SUPPLEMENTED FEATURES, C13c).
// Like pkg/nip57, this is a thin tag-shape layer over pkg/event.Builder's
// parameterized-replaceable conventions (the "d" identifier tag, spec
// §4.1), not a distinct teacher file.
package nip23

import (
	"strconv"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/event"
)

const (
	KindArticle = 30023
	KindDraft   = 30024
)

// Article describes the fields of a long-form post.
type Article struct {
	Identifier   string // "d" tag value; stable across edits
	Title        string
	Summary      string
	ImageURL     string
	Content      string // markdown
	PublishedAt  int64  // unix seconds; omitted if zero
	Hashtags     []string
	Draft        bool
}

// Build assembles the unsigned event for a.
func Build(a Article) (event.Event, error) {
	if a.Identifier == "" {
		return event.Event{}, cerr.New(cerr.Validation, "article requires a \"d\" identifier")
	}
	kind := KindArticle
	if a.Draft {
		kind = KindDraft
	}

	b := event.New(kind).Content(a.Content).Identifier(a.Identifier)
	if a.Title != "" {
		b = b.Tag("title", a.Title)
	}
	if a.Summary != "" {
		b = b.Tag("summary", a.Summary)
	}
	if a.ImageURL != "" {
		b = b.Tag("image", a.ImageURL)
	}
	if a.PublishedAt != 0 {
		b = b.Tag("published_at", strconv.FormatInt(a.PublishedAt, 10))
	}
	for _, tag := range a.Hashtags {
		b = b.Hashtag(tag)
	}
	return b.Unsigned(), nil
}

// Parse extracts the Article fields from a signed long-form event.
func Parse(ev event.Event) (Article, error) {
	if ev.Kind != KindArticle && ev.Kind != KindDraft {
		return Article{}, cerr.New(cerr.Validation, "expected kind 30023 or 30024")
	}
	a := Article{
		Content: ev.Content,
		Draft:   ev.Kind == KindDraft,
	}
	if t, ok := ev.Tags.Find("d"); ok {
		a.Identifier = t.Value(0)
	}
	if t, ok := ev.Tags.Find("title"); ok {
		a.Title = t.Value(0)
	}
	if t, ok := ev.Tags.Find("summary"); ok {
		a.Summary = t.Value(0)
	}
	if t, ok := ev.Tags.Find("image"); ok {
		a.ImageURL = t.Value(0)
	}
	if t, ok := ev.Tags.Find("published_at"); ok {
		if ts, err := strconv.ParseInt(t.Value(0), 10, 64); err == nil {
			a.PublishedAt = ts
		}
	}
	for _, t := range ev.Tags.FindAll("t") {
		a.Hashtags = append(a.Hashtags, t.Value(0))
	}
	return a, nil
}

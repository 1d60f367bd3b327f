package pow

import (
	"context"
	"strings"
	"testing"
	"time"

	"cosanostra/pkg/event"
)

func TestMineFindsTargetDifficulty(t *testing.T) {
	ev := event.Event{
		PubKey:    strings.Repeat("ab", 32),
		CreatedAt: 1700000000,
		Kind:      1,
		Tags:      event.Tags{},
		Content:   "mining test",
	}

	const difficulty = 8
	mined, err := Mine(context.Background(), ev, difficulty, Options{})
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}

	id, err := mined.ComputeID()
	if err != nil {
		t.Fatal(err)
	}
	if got := Difficulty(id); got < difficulty {
		t.Fatalf("mined id %s has difficulty %d, want >= %d", id, got, difficulty)
	}

	nonceTag, ok := mined.Tags.Find("nonce")
	if !ok {
		t.Fatal("expected a nonce tag on the mined event")
	}
	if nonceTag.Value(1) != "8" {
		t.Fatalf("nonce tag target = %q, want \"8\"", nonceTag.Value(1))
	}
}

func TestMineStripsExistingNonceTags(t *testing.T) {
	ev := event.Event{
		PubKey:    strings.Repeat("cd", 32),
		CreatedAt: 1700000000,
		Kind:      1,
		Tags:      event.Tags{{"nonce", "999", "99"}, {"p", strings.Repeat("11", 32)}},
		Content:   "strip me",
	}

	mined, err := Mine(context.Background(), ev, 4, Options{})
	if err != nil {
		t.Fatal(err)
	}
	nonceTags := mined.Tags.FindAll("nonce")
	if len(nonceTags) != 1 {
		t.Fatalf("expected exactly one nonce tag after mining, got %d", len(nonceTags))
	}
	if _, ok := mined.Tags.Find("p"); !ok {
		t.Fatal("expected unrelated tags to survive mining")
	}
}

func TestMineRespectsCancellation(t *testing.T) {
	ev := event.Event{PubKey: strings.Repeat("ef", 32), CreatedAt: 1700000000, Kind: 1, Tags: event.Tags{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Mine(ctx, ev, 40, Options{BatchSize: 1}); err == nil {
		t.Fatal("expected cancelled context to abort mining")
	}
}

func TestMineRespectsTimeout(t *testing.T) {
	ev := event.Event{PubKey: strings.Repeat("22", 32), CreatedAt: 1700000000, Kind: 1, Tags: event.Tags{}}

	_, err := Mine(context.Background(), ev, 256, Options{BatchSize: 1, Timeout: time.Millisecond})
	if err == nil {
		t.Fatal("expected an unreachable difficulty with a short timeout to fail")
	}
}

func TestMineRejectsOutOfRangeDifficulty(t *testing.T) {
	ev := event.Event{PubKey: strings.Repeat("33", 32), CreatedAt: 1700000000, Kind: 1}
	if _, err := Mine(context.Background(), ev, -1, Options{}); err == nil {
		t.Fatal("expected negative difficulty to be rejected")
	}
	if _, err := Mine(context.Background(), ev, 257, Options{}); err == nil {
		t.Fatal("expected difficulty above 256 to be rejected")
	}
}

func TestDifficultyCountsLeadingZeroBits(t *testing.T) {
	cases := []struct {
		id   string
		want int
	}{
		{"0000" + strings.Repeat("f", 60), 16},
		{"f" + strings.Repeat("0", 63), 0},
		{"1" + strings.Repeat("0", 63), 3},
	}
	for _, c := range cases {
		if got := Difficulty(c.id); got != c.want {
			t.Errorf("Difficulty(%s) = %d, want %d", c.id, got, c.want)
		}
	}
}

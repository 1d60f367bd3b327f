// Package pow implements NIP-13 proof-of-work mining: a cancellable nonce
// search that drives an event's id toward a target number of leading zero
// bits (spec §4.6, C8). Grounded on the teacher's SerializeEvent/hashing
// path in pkg/models/utils.go, looped here with a nonce tag instead of run
// once per relay-side validation.
package pow

import (
	"context"
	"strconv"
	"time"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/event"
)

// DefaultBatchSize is how many hashes are attempted between cancellation
// checks and progress callbacks (spec §4.6).
const DefaultBatchSize = 10000

// Progress reports mining state at each batch boundary.
type Progress struct {
	Nonce          int64
	HashesPerSecond float64
}

// Options configures a Mine call. Zero value uses DefaultBatchSize, no
// timeout, and no progress callback.
type Options struct {
	BatchSize int
	Timeout   time.Duration
	OnProgress func(Progress)
}

// Mine searches nonce values starting at 0 until ev's id has at least
// difficulty leading zero bits, or ctx is cancelled, or opts.Timeout
// elapses. Any existing nonce tags on ev are stripped first. Mining runs
// before signing: the returned event is still unsigned, and its id is
// computed directly (this package never calls a signer).
func Mine(ctx context.Context, ev event.Event, difficulty int, opts Options) (event.Event, error) {
	if difficulty < 0 || difficulty > 256 {
		return event.Event{}, cerr.New(cerr.Mining, "difficulty out of range [0,256]")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	working := ev
	working.Tags = stripNonceTags(ev.Tags)
	difficultyStr := strconv.Itoa(difficulty)

	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	start := time.Now()
	var nonce int64
	for {
		select {
		case <-ctx.Done():
			return event.Event{}, cerr.Wrap(cerr.Mining, "mining cancelled", ctx.Err())
		case <-deadline:
			return event.Event{}, cerr.New(cerr.Mining, "mining timed out")
		default:
		}

		candidate := working
		candidate.Tags = append(append(event.Tags{}, working.Tags...),
			event.Tag{"nonce", strconv.FormatInt(nonce, 10), difficultyStr})

		id, err := candidate.ComputeID()
		if err != nil {
			return event.Event{}, err
		}
		if leadingZeroBits(id) >= difficulty {
			return candidate, nil
		}

		nonce++
		if nonce%int64(batchSize) == 0 {
			if opts.OnProgress != nil {
				elapsed := time.Since(start).Seconds()
				hps := 0.0
				if elapsed > 0 {
					hps = float64(nonce) / elapsed
				}
				opts.OnProgress(Progress{Nonce: nonce, HashesPerSecond: hps})
			}
			select {
			case <-ctx.Done():
				return event.Event{}, cerr.Wrap(cerr.Mining, "mining cancelled", ctx.Err())
			case <-deadline:
				return event.Event{}, cerr.New(cerr.Mining, "mining timed out")
			default:
			}
		}
	}
}

// Difficulty returns the number of leading zero bits in a hex-encoded id
// (spec §4.6's proof_of_work_difficulty).
func Difficulty(idHex string) int {
	return leadingZeroBits(idHex)
}

func stripNonceTags(tags event.Tags) event.Tags {
	out := make(event.Tags, 0, len(tags))
	for _, t := range tags {
		if t.Name() == "nonce" {
			continue
		}
		out = append(out, t)
	}
	return out
}

var nibbleLeadingZeros = [16]int{
	0x0: 4, 0x1: 3, 0x2: 2, 0x3: 2,
	0x4: 1, 0x5: 1, 0x6: 1, 0x7: 1,
	0x8: 0, 0x9: 0, 0xa: 0, 0xb: 0,
	0xc: 0, 0xd: 0, 0xe: 0, 0xf: 0,
}

// leadingZeroBits counts leading zero bits across the hex string nibble by
// nibble: a zero nibble contributes 4 bits and continues; a non-zero
// nibble contributes its own leading-zero count and stops the count
// (spec §4.6).
func leadingZeroBits(idHex string) int {
	count := 0
	for _, r := range idHex {
		var nibble int
		switch {
		case r >= '0' && r <= '9':
			nibble = int(r - '0')
		case r >= 'a' && r <= 'f':
			nibble = int(r-'a') + 10
		case r >= 'A' && r <= 'F':
			nibble = int(r-'A') + 10
		default:
			return count
		}
		count += nibbleLeadingZeros[nibble]
		if nibble != 0 {
			break
		}
	}
	return count
}

// Package relaypool implements a fan-out pool of relay sessions (spec
// §4.9, C11): concurrent broadcast of sends, merged inbound stream tagged
// by relay, and dedup tracking. Grounded on the teacher's
// pkg/storage/store.go EventStore (a mutex-guarded map used for dedup and
// query), adapted here from a server-side persisted event store into a
// client-side seen-id cache the pool uses to avoid re-delivering the same
// event received from more than one relay.
package relaypool

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"cosanostra/pkg/filter"
	"cosanostra/pkg/logger"
	"cosanostra/pkg/relay"
	"cosanostra/pkg/wire"
)

// TaggedMessage pairs a decoded relay frame with the URL of the relay it
// arrived from.
type TaggedMessage struct {
	URL     string
	Message wire.RelayMessage
}

// Pool manages one Session per relay URL and merges their inbound streams.
type Pool struct {
	log logger.Logger

	mu       sync.RWMutex
	sessions map[string]*relay.Session

	seenMu sync.Mutex
	seen   map[string]struct{}

	merged chan TaggedMessage
	cancel context.CancelFunc
}

// New constructs an empty Pool.
func New(opts ...Option) *Pool {
	p := &Pool{
		log:      logger.Nop(),
		sessions: make(map[string]*relay.Session),
		seen:     make(map[string]struct{}),
		merged:   make(chan TaggedMessage, 1024),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLogger injects a logging capability for the pool and every session
// it creates.
func WithLogger(l logger.Logger) Option { return func(p *Pool) { p.log = l } }

// AddRelay creates and connects a Session for url, wiring its inbound
// stream into the pool's merged consumer. Reconnecting the same URL twice
// is a no-op.
func (p *Pool) AddRelay(ctx context.Context, url string, opts ...relay.Option) error {
	p.mu.Lock()
	if _, exists := p.sessions[url]; exists {
		p.mu.Unlock()
		return nil
	}
	allOpts := append([]relay.Option{relay.WithLogger(p.log)}, opts...)
	sess := relay.New(url, allOpts...)
	p.sessions[url] = sess
	p.mu.Unlock()

	if err := sess.Connect(ctx); err != nil {
		return err
	}
	go p.pump(url, sess)
	return nil
}

// pump is the single producer goroutine per session feeding the merged
// channel. Each EVENT message takes the dedup mutex once in alreadySeen
// before the channel send; the hot path is not lock-free.
func (p *Pool) pump(url string, sess *relay.Session) {
	for msg := range sess.Messages() {
		if msg.Kind == wire.RelayEvent {
			if p.alreadySeen(msg.Event.ID) {
				continue
			}
		}
		p.merged <- TaggedMessage{URL: url, Message: msg}
	}
}

func (p *Pool) alreadySeen(id string) bool {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	if _, ok := p.seen[id]; ok {
		return true
	}
	p.seen[id] = struct{}{}
	return false
}

// RemoveRelay disconnects and drops the session for url.
func (p *Pool) RemoveRelay(url string) error {
	p.mu.Lock()
	sess, ok := p.sessions[url]
	delete(p.sessions, url)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.Disconnect()
}

// Broadcast sends msg to every connected relay concurrently, logging
// (not raising) per-session failures.
func (p *Pool) Broadcast(msg wire.ClientMessage) {
	p.mu.RLock()
	sessions := make([]*relay.Session, 0, len(p.sessions))
	urls := make([]string, 0, len(p.sessions))
	for url, sess := range p.sessions {
		sessions = append(sessions, sess)
		urls = append(urls, url)
	}
	p.mu.RUnlock()

	var wg sync.WaitGroup
	for i, sess := range sessions {
		wg.Add(1)
		go func(url string, sess *relay.Session) {
			defer wg.Done()
			if err := sess.Send(msg); err != nil {
				p.log.WithError(err).Warnf("broadcast to %s failed", url)
			}
		}(urls[i], sess)
	}
	wg.Wait()
}

// Subscribe broadcasts a REQ for id and filters across every relay in the
// pool. If id is "", a fresh UUID is generated.
func (p *Pool) Subscribe(id string, filters ...filter.Filter) string {
	if id == "" {
		id = uuid.NewString()
	}
	p.Broadcast(wire.NewReqMessage(id, filters...))
	return id
}

// Unsubscribe broadcasts a CLOSE for id across every relay in the pool.
func (p *Pool) Unsubscribe(id string) {
	p.Broadcast(wire.NewCloseMessage(id))
}

// AllMessages returns the merged, per-session-ordered stream of
// (url, RelayMessage) pairs across every relay in the pool.
func (p *Pool) AllMessages() <-chan TaggedMessage { return p.merged }

// Close disconnects every relay session in the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = make(map[string]*relay.Session)
	p.mu.Unlock()

	for url, sess := range sessions {
		if err := sess.Disconnect(); err != nil {
			p.log.WithError(err).Warnf("error disconnecting %s", url)
		}
	}
}

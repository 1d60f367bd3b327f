// Package relay implements a single WebSocket connection to a Nostr relay:
// its state machine, send/receive framing, ping/watchdog heartbeats, and
// backoff-driven reconnection (spec §4.8, C10). Grounded on the teacher's
// pkg/relay/relay.go and pkg/relay/client.go, which manage the
// register/unregister/read-loop shape over gorilla/websocket on the server
// side; this package generalizes that shape into a client dialer with its
// own state machine instead of a relay's client registry.
package relay

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/logger"
	"cosanostra/pkg/wire"
)

// State is one position in the session's state machine (spec §4.8).
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Error
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithPingInterval overrides the default 30s ping cadence.
func WithPingInterval(d time.Duration) Option { return func(s *Session) { s.pingInterval = d } }

// WithReadTimeout overrides the default 30s watchdog timeout.
func WithReadTimeout(d time.Duration) Option { return func(s *Session) { s.readTimeout = d } }

// WithAutoReconnect enables automatic reconnection on Error.
func WithAutoReconnect(enabled bool) Option { return func(s *Session) { s.autoReconnect = enabled } }

// WithLogger injects a logging capability; defaults to logger.Nop().
func WithLogger(l logger.Logger) Option { return func(s *Session) { s.log = l } }

// Session is a single-relay WebSocket connection. Exactly one goroutine
// drives the reader, pinger, and watchdog loops apiece; send is safe for
// concurrent callers, serialized internally.
type Session struct {
	url           string
	pingInterval  time.Duration
	readTimeout   time.Duration
	autoReconnect bool
	log           logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	state     State
	attempt   int
	errored   bool
	lastRecv  time.Time
	sendMu    sync.Mutex

	states   chan State
	incoming chan wire.RelayMessage
	cancel   context.CancelFunc
}

// New constructs a Session for url (ws:// or wss://), unconnected.
func New(url string, opts ...Option) *Session {
	s := &Session{
		url:          url,
		pingInterval: 30 * time.Second,
		readTimeout:  30 * time.Second,
		log:          logger.Nop(),
		state:        Disconnected,
		states:       make(chan State, 16),
		incoming:     make(chan wire.RelayMessage, 256),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// States returns a channel of state transitions, for observers that want
// to react without polling (spec §4.8).
func (s *Session) States() <-chan State { return s.states }

// Messages returns the channel of decoded inbound frames. It is
// single-consumer; sharing a consumer across goroutines requires external
// synchronization.
func (s *Session) Messages() <-chan wire.RelayMessage { return s.incoming }

// Connect dials the relay. It fails if the session is not Disconnected.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Disconnected {
		s.mu.Unlock()
		return cerr.New(cerr.Network, "connect called while not disconnected")
	}
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	return s.dial(ctx, runCtx)
}

func (s *Session) dial(ctx, runCtx context.Context) error {
	s.setState(Connecting)

	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.log.WithError(err).Errorf("dial failed: %s", s.url)
		if s.transitionToError() {
			s.maybeReconnect(runCtx)
		}
		return cerr.Wrap(cerr.Network, "dial relay", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.lastRecv = time.Now()
	s.attempt = 0
	s.errored = false
	s.mu.Unlock()
	s.setState(Connected)

	go s.readLoop(runCtx)
	go s.pingLoop(runCtx)
	go s.watchdogLoop(runCtx)
	return nil
}

// Send encodes and writes one client frame. It requires Connected and
// serializes against concurrent callers.
func (s *Session) Send(msg wire.ClientMessage) error {
	s.mu.Lock()
	conn := s.conn
	state := s.state
	s.mu.Unlock()
	if state != Connected || conn == nil {
		return cerr.New(cerr.Network, "send requires a connected session")
	}

	encoded, err := msg.Encode()
	if err != nil {
		return err
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, encoded); err != nil {
		return cerr.Wrap(cerr.Network, "write frame", err)
	}
	return nil
}

// Disconnect idempotently cancels all background loops and closes the
// socket with a normal-closure frame.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if s.state == Disconnected {
		s.mu.Unlock()
		return nil
	}
	conn := s.conn
	cancel := s.cancel
	s.state = Disconnected
	s.conn = nil
	s.errored = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		deadline := time.Now().Add(2 * time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.Close()
	}
	s.publishState(Disconnected)
	return nil
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.publishState(st)
}

// transitionToError moves the session to Error and reports whether this
// call made the transition. The reader, pinger, and watchdog loops can
// each independently observe a dead connection; only the first of them
// to call this should schedule a reconnect, or attempt would be
// double-incremented and multiple reconnect goroutines would race.
func (s *Session) transitionToError() bool {
	s.mu.Lock()
	if s.errored {
		s.mu.Unlock()
		return false
	}
	s.errored = true
	s.state = Error
	s.mu.Unlock()
	s.publishState(Error)
	return true
}

func (s *Session) publishState(st State) {
	select {
	case s.states <- st:
	default:
		s.log.Warnf("state channel full, dropping transition to %s", st)
	}
}

func (s *Session) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn := s.currentConn()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			s.log.WithError(err).Warnf("read error on %s", s.url)
			if s.transitionToError() {
				s.maybeReconnect(ctx)
			}
			return
		}

		s.mu.Lock()
		s.lastRecv = time.Now()
		s.mu.Unlock()

		msg, err := wire.DecodeRelayMessage(data)
		if err != nil {
			s.log.WithError(err).Warnf("malformed frame from %s", s.url)
			continue
		}
		select {
		case s.incoming <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn := s.currentConn()
			if conn == nil {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				s.log.WithError(err).Warnf("ping failed on %s", s.url)
				if s.transitionToError() {
					s.maybeReconnect(ctx)
				}
				return
			}
		}
	}
}

func (s *Session) watchdogLoop(ctx context.Context) {
	ticker := time.NewTicker(s.readTimeout)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			expired := time.Since(s.lastRecv) >= s.readTimeout
			s.mu.Unlock()
			if expired {
				s.log.Warnf("read timeout on %s", s.url)
				if s.transitionToError() {
					s.maybeReconnect(ctx)
				}
				return
			}
		}
	}
}

func (s *Session) currentConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// maybeReconnect schedules a reconnect attempt with exponential backoff
// capped at 60s plus up to 20% jitter, per spec §4.8. It is a no-op when
// auto-reconnect is disabled.
func (s *Session) maybeReconnect(ctx context.Context) {
	if !s.autoReconnect {
		return
	}
	s.mu.Lock()
	s.attempt++
	attempt := s.attempt
	s.mu.Unlock()

	delay := backoffDelay(attempt)
	s.log.Infof("reconnecting to %s in %s (attempt %d)", s.url, delay, attempt)

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		s.mu.Lock()
		s.state = Disconnected
		s.mu.Unlock()

		dialCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Connect(dialCtx); err != nil {
			s.log.WithError(err).Warnf("reconnect attempt %d failed", attempt)
		}
	}()
}

// backoffDelay computes min(60s, 2^(attempt-1)) seconds plus up to 20%
// uniform jitter. The exponent/cap arithmetic is driven by
// cenkalti/backoff/v4's ExponentialBackOff.NextBackOff, called attempt
// times with RandomizationFactor zeroed so it returns the bare
// interval; a local jitter draw then adds the +0-20% spread the
// library's own RandomizationFactor doesn't express directly (it
// jitters symmetrically around the interval rather than only upward).
func backoffDelay(attempt int) time.Duration {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 1 * time.Second
	eb.Multiplier = 2
	eb.MaxInterval = 60 * time.Second
	eb.RandomizationFactor = 0
	eb.Reset()

	var base time.Duration
	for i := 0; i < attempt; i++ {
		base = eb.NextBackOff()
	}
	jitter := time.Duration(rand.Float64() * 0.2 * float64(base))
	return base + jitter
}

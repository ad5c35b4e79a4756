package bridge

import (
	"log/slog"
	"sync"
)

// Well-known outbound message kinds
const (
	KindAuthentication = "authentication"
	KindLogin          = "login"
)

// Size of each subscription's token buffer
const tokenBuffer = 16

// HostFunc delivers an encoded message to the native host. A nil
// HostFunc means the app is not running inside a native host.
type HostFunc func(message string)

// Bridge connects the app to an embedding native host: outbound
// messages go through the host's message channel, inbound login tokens
// fan out to registered subscriptions.
type Bridge struct {
	host   HostFunc
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// New creates a bridge. Host detection happens once, at construction;
// IsNativeHost is constant for the bridge's lifetime.
func New(host HostFunc, logger *slog.Logger) *Bridge {
	return &Bridge{
		host:   host,
		logger: logger.With(slog.String("component", "bridge")),
		subs:   make(map[*Subscription]struct{}),
	}
}

// IsNativeHost reports whether the app runs inside a native host
func (b *Bridge) IsNativeHost() bool {
	return b.host != nil
}

// Send delivers a message to the host, encoded as "<kind>|<payload>"
// (bare "<kind>" when the payload is empty). No-op outside a native
// host; best-effort inside one, failures are never observable here.
func (b *Bridge) Send(kind, payload string) {
	if b.host == nil {
		return
	}

	msg := kind
	if payload != "" {
		msg = kind + "|" + payload
	}

	b.logger.Debug("sending host message", slog.String("kind", kind))
	b.host(msg)
}

// Subscription is a registered token listener. Cancel removes exactly
// this listener and is safe to call more than once.
type Subscription struct {
	bridge *Bridge
	tokens chan string
	once   sync.Once
}

// Tokens returns the channel inbound login tokens arrive on. The
// channel closes when the subscription is cancelled.
func (s *Subscription) Tokens() <-chan string {
	return s.tokens
}

// Cancel removes the listener
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bridge.mu.Lock()
		defer s.bridge.mu.Unlock()
		delete(s.bridge.subs, s)
		close(s.tokens)
	})
}

// SubscribeTokens registers a listener for inbound login tokens
func (b *Bridge) SubscribeTokens() *Subscription {
	sub := &Subscription{
		bridge: b,
		tokens: make(chan string, tokenBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.tokens)
		return sub
	}
	b.subs[sub] = struct{}{}

	return sub
}

// DeliverToken fans an inbound host token out to every current
// subscription. Each listener sees the token at most once; a listener
// whose buffer is full misses it.
func (b *Bridge) DeliverToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.tokens <- token:
		default:
			b.logger.Warn("inbound token dropped - listener buffer full")
		}
	}
}

// Close cancels all subscriptions
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

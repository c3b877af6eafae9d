// Package event implements the process-wide multicast of back-channel
// logout events to per-principal filtered subscriptions. Delivery is
// live-only: there is no buffering or replay for subscribers that
// connect after an event was published.
package event

import (
	"sync"

	"github.com/idpkit/backchannel/pkg/session"
)

// subscriptionBuffer is the per-subscription channel capacity. A
// subscriber that falls this far behind misses events instead of
// blocking the publisher.
const subscriptionBuffer = 8

// Message is the notification payload delivered to subscribers.
type Message struct {
	Message string `json:"message"`
}

// LoggedOutMessage is the payload of every logout notification.
var LoggedOutMessage = Message{Message: "User logged out"}

// Broadcaster republishes logout events to all currently connected
// subscriptions. Publish may be called concurrently with Subscribe and
// Subscription.Close from independent goroutines; every live
// subscription matching the event principal receives the event.
//
// The zero value is not usable, construct with NewBroadcaster.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]struct{}
	connected     bool

	equal func(a, b session.Principal) bool
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithLazyConnect makes the broadcaster report publishes as
// undeliverable until the first subscription ever connects, matching
// multicast streams that capture their publish capability on first
// subscription. Delivery itself is unaffected: without subscribers
// events are dropped either way.
func WithLazyConnect() Option {
	return func(b *Broadcaster) {
		b.connected = false
	}
}

// WithEquality replaces the principal equality the broadcaster filters
// subscriptions by. The default is session.Equal.
func WithEquality(equal func(a, b session.Principal) bool) Option {
	return func(b *Broadcaster) {
		b.equal = equal
	}
}

// NewBroadcaster returns a connected broadcaster: publishes report
// deliverability immediately. Use WithLazyConnect for the
// first-subscription capture semantics.
func NewBroadcaster(options ...Option) *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]struct{}),
		connected:     true,
		equal:         session.Equal,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Publish broadcasts a logout event for the given principal to every
// live subscription whose filter matches. It reports whether the
// multicast channel is connected; the value is diagnostic only, since
// per-subscription filtering applies regardless.
func (b *Broadcaster) Publish(principal session.Principal) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscriptions {
		if !b.equal(sub.principal, principal) {
			continue
		}
		select {
		case sub.ch <- LoggedOutMessage:
		default:
			// slow subscriber, event missed
		}
	}
	return b.connected
}

// Subscribe returns a subscription delivering one message for every
// event published for a principal equal to the given one, from now on.
// The caller must Close the subscription when done.
func (b *Broadcaster) Subscribe(principal session.Principal) *Subscription {
	sub := &Subscription{
		broadcaster: b,
		principal:   principal,
		ch:          make(chan Message, subscriptionBuffer),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[sub] = struct{}{}
	b.connected = true
	return sub
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

func (b *Broadcaster) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscriptions, sub)
	close(sub.ch)
}

// Subscription is a per-caller filtered view of the logout event
// stream.
type Subscription struct {
	broadcaster *Broadcaster
	principal   session.Principal
	ch          chan Message
	closeOnce   sync.Once
}

// Messages returns the channel notifications are delivered on. The
// channel is closed when the subscription is closed.
func (s *Subscription) Messages() <-chan Message {
	return s.ch
}

// Close tears the subscription down. Further events are not delivered,
// other subscriptions and the publisher are unaffected. Close is
// idempotent and safe to call concurrently with Publish.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.broadcaster.unsubscribe(s)
	})
}

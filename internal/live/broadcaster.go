package live

import (
	"sync"
)

// DefaultBacklog is the per-subscriber buffer; once full, the oldest
// buffered message for that subscriber is dropped. The delivery
// contract is "eventually reload", not guaranteed delivery of every
// diff, so dropping under pressure is acceptable.
const DefaultBacklog = 64

// Broadcaster fans messages out to any number of subscribers. The
// producer never blocks: slow subscribers lose their oldest buffered
// messages instead of stalling the pipeline or each other. Subscribers
// only see messages emitted after they subscribed.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	backlog int
	closed  bool
}

// Subscription is one consumer's handle into the broadcaster. Messages
// arrive on C in the order they were broadcast.
type Subscription struct {
	broadcaster *Broadcaster
	ch          chan Message
	once        sync.Once
}

// NewBroadcaster creates a broadcaster with the given per-subscriber
// backlog capacity. Non-positive values use DefaultBacklog.
func NewBroadcaster(backlog int) *Broadcaster {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Broadcaster{
		subs:    make(map[*Subscription]struct{}),
		backlog: backlog,
	}
}

// Subscribe registers a new consumer. Call Close on the returned
// subscription when the consumer goes away.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{
		broadcaster: b,
		ch:          make(chan Message, b.backlog),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub] = struct{}{}

	return sub
}

// Broadcast delivers a message to every current subscriber without
// blocking. A subscriber whose backlog is full loses its oldest
// buffered message; other subscribers are unaffected.
func (b *Broadcaster) Broadcast(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for sub := range b.subs {
		select {
		case sub.ch <- msg:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- msg:
			default:
			}
		}
	}
}

// Close tears down the broadcaster and closes every subscription
// channel. Further broadcasts are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// C is the subscription's receive channel. It is closed when the
// subscription or the broadcaster shuts down.
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// Close removes the subscription from the broadcaster and closes its
// channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.broadcaster
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[s]; ok {
			delete(b.subs, s)
			close(s.ch)
		}
	})
}

// Package events provides the fire-and-forget notification channel used to
// surface command dispatch outcomes to interested observers.
package events

import (
	"sync"

	"github.com/castorie/herald/internal/logging"
)

const defaultBufferSize = 64

// CommandNotFound reports that a prefixed message named an alias no
// registered command answers to.
type CommandNotFound[M any] struct {
	Message M
	Prefix  string
	Alias   string
}

// CommandNotAllowed reports that a matched command was denied by its
// restrictions for the triggering message.
type CommandNotAllowed[M any] struct {
	Message M
	Prefix  string
	Alias   string
}

// Bus is an in-process publish/subscribe channel for one event type.
// Publish never blocks: a subscriber that cannot keep up loses events,
// delivery is at-most-once with no retry.
type Bus[E any] struct {
	mu     sync.Mutex
	subs   map[int]chan E
	nextID int
	closed bool
	drops  uint64
}

// NewBus creates an empty bus.
func NewBus[E any]() *Bus[E] {
	return &Bus[E]{subs: make(map[int]chan E)}
}

// Publish delivers event to every current subscriber without blocking.
func (b *Bus[E]) Publish(event E) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	// Sends stay under the lock so no subscriber channel can be closed by a
	// concurrent unsubscribe or Close mid-send. The sends are buffered and
	// non-blocking, so the hold is bounded.
	var logDrops uint64
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.drops++
			if b.drops%100 == 1 {
				logDrops = b.drops
			}
		}
	}
	b.mu.Unlock()

	if logDrops != 0 {
		logging.Logger().Warn("event bus dropping events for slow subscriber", "total_drops", logDrops)
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The channel is closed on unsubscribe. Subscribing on
// a closed bus returns an already-closed channel.
func (b *Bus[E]) Subscribe() (<-chan E, func()) {
	ch := make(chan E, defaultBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		close(ch)
	}

	return ch, unsubscribe
}

// Close drops all subscribers and makes further publishes no-ops.
func (b *Bus[E]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

package events

import (
	"context"
	"sync"
	"sync/atomic"

	"ice-breakun/backend/pkg/logger"
)

const defaultSubscriberBuffer = 64

// Bus fans events out to in-process subscribers.
// Sends never block: a subscriber whose buffer is full misses the event.
type Bus struct {
	log    *logger.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	closed bool

	dropped atomic.Uint64
}

// NewBus creates a bus whose subscribers get buffer slots each
func NewBus(buffer int, log *logger.Logger) *Bus {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &Bus{
		log:    log.WithComponent("events.bus"),
		buffer: buffer,
		subs:   make(map[uint64]chan Event),
	}
}

// Subscribe registers a subscriber until ctx is done, at which point the
// returned channel is closed.
func (b *Bus) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(id)
	}()

	return ch
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers e to every current subscriber
func (b *Bus) Publish(_ context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
			b.log.Debug("Dropped event for slow subscriber", "type", e.Type)
		}
	}
}

// Subscribers returns the number of live subscriptions
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscription; later subscriptions are closed immediately
func (b *Bus) Close() {
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

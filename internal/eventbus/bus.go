package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"
)

// Event is one broadcast line. Subscribers whose id equals Exclude skip it.
type Event struct {
	Text    string
	Exclude string
}

// Bus fans events out to every subscriber of the relay.
type Bus struct {
	mu    sync.Mutex
	subs  map[string]chan Event
	log   pslog.Logger
	depth int
}

// New constructs a Bus whose subscriber channels hold depth events.
func New(logger pslog.Logger, depth int) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	if depth <= 0 {
		depth = 256
	}
	return &Bus{
		subs:  make(map[string]chan Event),
		log:   logger,
		depth: depth,
	}
}

// Subscribe registers a subscriber and returns its channel and a cancel func.
// Subscribing an id twice replaces the previous channel.
func (b *Bus) Subscribe(id string) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	if prev, ok := b.subs[id]; ok {
		close(prev)
	}
	b.subs[id] = ch
	count := len(b.subs)
	b.mu.Unlock()
	b.log.With("conn", id).Debug("eventbus subscribe", "subs", count)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if cur, ok := b.subs[id]; ok && cur == ch {
				delete(b.subs, id)
				close(ch)
			}
			b.mu.Unlock()
			b.log.With("conn", id).Debug("eventbus unsubscribe")
		})
	}
}

// Count returns the number of subscribers.
func (b *Bus) Count() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers event to every subscriber except event.Exclude. Full
// subscriber channels drop the event.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	dropped := 0
	for id, sub := range b.subs {
		if id == event.Exclude {
			continue
		}
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "count", dropped)
	}
}

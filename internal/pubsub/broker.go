package pubsub

import (
	"sync"
	"sync/atomic"
)

// Broker fans values out to subscribers. Each subscriber gets a buffered
// channel; when a slow subscriber's buffer is full the oldest pending value is
// discarded so Publish never blocks.
type Broker[T any] struct {
	mu        sync.Mutex
	subs      map[uint64]*Subscription[T]
	nextID    uint64
	buffer    int
	latest    T
	hasLatest bool
	closed    bool
	dropped   atomic.Uint64
}

type Subscription[T any] struct {
	id     uint64
	ch     chan T
	broker *Broker[T]
	once   sync.Once
}

func NewBroker[T any](buffer int) *Broker[T] {
	if buffer <= 0 {
		buffer = 1
	}
	return &Broker[T]{
		subs:   make(map[uint64]*Subscription[T]),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The most recent value, if any, is
// delivered first.
func (b *Broker[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription[T]{
		id:     b.nextID,
		ch:     make(chan T, b.buffer),
		broker: b,
	}
	b.nextID++
	if b.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	if b.hasLatest {
		sub.ch <- b.latest
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Broker[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.latest = v
	b.hasLatest = true
	for _, sub := range b.subs {
		select {
		case sub.ch <- v:
			continue
		default:
		}
		select {
		case <-sub.ch:
			b.dropped.Add(1)
		default:
		}
		select {
		case sub.ch <- v:
		default:
			b.dropped.Add(1)
		}
	}
}

// Latest returns the last published value.
func (b *Broker[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.hasLatest
}

func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Broker[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close revokes the subscription and closes its channel. Safe to call twice.
func (s *Subscription[T]) Close() {
	b := s.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s.id)
	s.once.Do(func() { close(s.ch) })
}

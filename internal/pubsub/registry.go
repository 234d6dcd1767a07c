package pubsub

import "sync"

type Closer interface {
	Close()
}

// Registry owns the subscriptions of one view and releases them together.
type Registry struct {
	mu     sync.Mutex
	items  []Closer
	closed bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Track adds c to the registry. After Close, c is closed immediately.
func (r *Registry) Track(c Closer) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		c.Close()
		return
	}
	r.items = append(r.items, c)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Close releases tracked items newest first.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	items := r.items
	r.items = nil
	r.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		items[i].Close()
	}
}

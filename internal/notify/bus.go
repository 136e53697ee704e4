// Package notify carries payload-free "something changed" signals between
// independent consumers of the same data.
package notify

import "sync"

// Bus fans a Publish out to every current subscriber.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]func())}
}

// Subscribe registers fn and returns a handle that removes it.
// The handle is safe to call more than once.
func (b *Bus) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every subscriber synchronously. Subscribers must not block.
func (b *Bus) Publish() {
	b.mu.RLock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Registry hands out one Bus per key (a user id), so a change made by one
// user only reaches that user's listeners.
type Registry struct {
	mu    sync.Mutex
	buses map[string]*Bus
}

func NewRegistry() *Registry {
	return &Registry{buses: make(map[string]*Bus)}
}

func (r *Registry) For(key string) *Bus {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buses[key]
	if !ok {
		b = NewBus()
		r.buses[key] = b
	}
	return b
}

// Publish signals key's bus if anyone ever subscribed to it.
func (r *Registry) Publish(key string) {
	r.mu.Lock()
	b, ok := r.buses[key]
	r.mu.Unlock()
	if ok {
		b.Publish()
	}
}

// Subscribe is For(key).Subscribe(fn); the returned handle also drops the
// key's bus once it has no listeners left. Lookup and subscription share
// one r.mu hold.
func (r *Registry) Subscribe(key string, fn func()) func() {
	r.mu.Lock()
	b, ok := r.buses[key]
	if !ok {
		b = NewBus()
		r.buses[key] = b
	}
	unsub := b.Subscribe(fn)
	r.mu.Unlock()

	return func() {
		unsub()
		r.mu.Lock()
		if b.Len() == 0 && r.buses[key] == b {
			delete(r.buses, key)
		}
		r.mu.Unlock()
	}
}

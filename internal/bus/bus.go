// Package bus is a minimal process-wide notifier for the "orders changed"
// signal. Containers get an explicit *Bus injected instead of listening on
// an ambient global event target.
package bus

import "sync"

// Bus fans a payload-less notification out to all subscribers. Any component
// may publish, any may subscribe.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func New() *Bus {
	return &Bus{subs: map[int]func(){}}
}

// Subscribe registers fn and returns an unsubscribe func. fn runs on the
// publisher's goroutine and must not block.
func (b *Bus) Subscribe(fn func()) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish notifies all current subscribers.
func (b *Bus) Publish() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Package notify carries the "index changed" signal between otherwise
// independent views. The signal has no payload: subscribers re-read the full
// index, there is no diffing.
package notify

import "sync"

// Broker is a process-wide publish/subscribe signal. Notifications coalesce:
// each subscriber channel holds at most one pending signal, and a signal
// published while one is already pending is dropped for that subscriber.
// Nothing is replayed to late subscribers.
type Broker struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan struct{})}
}

// Subscribe registers interest in index changes. The returned cancel
// function removes the subscription; it is safe to call more than once.
func (b *Broker) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
	return ch, cancel
}

// Publish signals every current subscriber without blocking.
func (b *Broker) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

package storage

import (
	"context"
	"sync"
)

// Broadcaster fans full snapshots out to subscribers. Each subscriber holds
// at most one pending snapshot; a newer one replaces it, so slow readers
// only ever see the latest state.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan []Record]struct{}
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan []Record]struct{})}
}

// Subscribe registers a subscriber and queues initial as its first value.
// The channel is closed when ctx is done or the broadcaster is closed.
func (b *Broadcaster) Subscribe(ctx context.Context, initial []Record) <-chan []Record {
	ch := make(chan []Record, 1)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	ch <- CloneAll(initial)
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(ch)
	}()
	return ch
}

// Publish delivers snapshot to every subscriber without blocking.
func (b *Broadcaster) Publish(snapshot []Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- CloneAll(snapshot)
	}
}

// Len returns the number of active subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}

func (b *Broadcaster) remove(ch chan []Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

package tabsync

import (
	"context"
	"errors"
	"sync"
)

const defaultSubscriberCapacity = 64

var ErrHubClosed = errors.New("tabsync: hub closed")

// Hub is an in-process broadcaster. Every subscriber, including the
// publisher's own, receives each change; Listener drops its own echoes.
type Hub struct {
	mu       sync.RWMutex
	subs     map[*hubSub]struct{}
	capacity int
	closed   bool
}

type hubSub struct {
	ch   chan Change
	done <-chan struct{}
	once sync.Once
}

func (s *hubSub) close() { s.once.Do(func() { close(s.ch) }) }

func NewHub() *Hub {
	return &Hub{subs: map[*hubSub]struct{}{}, capacity: defaultSubscriberCapacity}
}

func (h *Hub) Subscribe(ctx context.Context) (<-chan Change, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	sub := &hubSub{ch: make(chan Change, h.capacity), done: ctx.Done()}
	h.subs[sub] = struct{}{}
	go func() {
		<-ctx.Done()
		h.remove(sub)
	}()
	return sub.ch, nil
}

func (h *Hub) remove(sub *hubSub) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.close()
}

// Publish blocks until every live subscriber has buffered the change, has
// gone away, or ctx ends.
func (h *Hub) Publish(ctx context.Context, c Change) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	for sub := range h.subs {
		select {
		case sub.ch <- c:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for sub := range h.subs {
		sub.close()
		delete(h.subs, sub)
	}
	return nil
}

// Subscribers reports how many live subscriptions the hub is feeding.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

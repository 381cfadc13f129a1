// Package tabsync propagates persisted collection writes from one running
// instance ("tab") to every other instance sharing the same storage.
package tabsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Change announces that Key now holds Value in shared storage.
type Change struct {
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"new_value"`
	Origin string          `json:"origin"`
	At     time.Time       `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

type Subscriber interface {
	// Subscribe returns a channel of changes that is closed when ctx ends
	// or the transport goes away.
	Subscribe(ctx context.Context) (<-chan Change, error)
}

type Broadcaster interface {
	Publisher
	Subscriber
	Close() error
}

func Encode(c Change) ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode change %s: %w", c.Key, err)
	}
	return b, nil
}

func Decode(b []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(b, &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if c.Key == "" {
		return Change{}, fmt.Errorf("decode change: missing key")
	}
	return c, nil
}

// Nop discards every change; used when sync is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }

func (Nop) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (Nop) Close() error { return nil }

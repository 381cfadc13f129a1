package tabsync

import (
	"context"

	"campus-crave/internal/common/logger"
)

// Applier replaces one in-memory collection from its serialized value.
type Applier interface {
	Apply(key string, value []byte) error
}

// Listener feeds changes written by other tabs into the local store.
type Listener struct {
	sub     Subscriber
	applier Applier
	origin  string
	lg      *logger.Logger
	applied func(Change)
}

type ListenerOption func(*Listener)

// OnApplied registers a callback run after each successful apply.
func OnApplied(fn func(Change)) ListenerOption {
	return func(l *Listener) {
		if fn != nil {
			l.applied = fn
		}
	}
}

func NewListener(sub Subscriber, applier Applier, origin string, opts ...ListenerOption) *Listener {
	l := &Listener{sub: sub, applier: applier, origin: origin, lg: logger.New("tabsync")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run blocks until ctx ends or the subscription closes.
func (l *Listener) Run(ctx context.Context) error {
	changes, err := l.sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	for c := range changes {
		if c.Origin == l.origin {
			continue
		}
		if err := l.applier.Apply(c.Key, c.Value); err != nil {
			l.lg.Error("sync_apply_failed", err, map[string]any{"key": c.Key, "origin": c.Origin})
			continue
		}
		l.lg.Debug("sync_applied", map[string]any{"key": c.Key, "origin": c.Origin, "bytes": len(c.Value)})
		if l.applied != nil {
			l.applied(c)
		}
	}
	return ctx.Err()
}

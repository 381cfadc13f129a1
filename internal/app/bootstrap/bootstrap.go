// Package bootstrap turns a loaded config into a running store: the
// persistence backend, the sync transport and the listener that keeps this
// instance in step with the others.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/config"
	"campus-crave/internal/connections/database"
	"campus-crave/internal/connections/rabbitmq"
	"campus-crave/internal/responder"
	"campus-crave/internal/storage"
	"campus-crave/internal/storage/memory"
	"campus-crave/internal/storage/postgres"
	"campus-crave/internal/storage/sqlite"
	"campus-crave/internal/store"
	"campus-crave/internal/tabsync"
)

type Runtime struct {
	Config *config.Config
	TabID  string
	KV     storage.KV
	Sync   tabsync.Broadcaster
	Store  *store.Store
	Bot    responder.Responder

	lg *logger.Logger
}

// NewTabID returns a short random id naming this running instance.
func NewTabID() string { return uuid.NewString()[:8] }

// Open connects storage and sync and loads the store. tabID may be empty.
func Open(ctx context.Context, cfg *config.Config, tabID string, opts ...store.Option) (*Runtime, error) {
	if tabID == "" {
		tabID = NewTabID()
	}
	rt := &Runtime{Config: cfg, TabID: tabID, lg: logger.New("bootstrap")}

	kv, err := OpenKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.KV = kv

	b, err := OpenSync(cfg, tabID)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	rt.Sync = b

	opts = append([]store.Option{store.WithPublisher(b, tabID)}, opts...)
	rt.Store = store.New(kv, opts...)
	if err := rt.Store.Load(ctx); err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("load store: %w", err)
	}
	rt.Bot = responder.NewCanned(responder.WithDelay(cfg.Bot.Delay))

	rt.lg.Info("runtime_ready", map[string]any{
		"tab":     tabID,
		"storage": cfg.Storage.Driver,
		"sync":    cfg.Sync.Driver,
	})
	return rt, nil
}

func OpenKV(ctx context.Context, cfg *config.Config) (storage.KV, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.New(cfg.Storage.Path)
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		kv, err := postgres.New(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return kv, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func OpenSync(cfg *config.Config, tabID string) (tabsync.Broadcaster, error) {
	switch cfg.Sync.Driver {
	case "", "none":
		return tabsync.Nop{}, nil
	case "hub":
		return tabsync.NewHub(), nil
	case "rabbitmq":
		client, err := rabbitmq.Dial(cfg.RabbitMQ, "campus-crave-"+tabID)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq connect: %w", err)
		}
		r, err := tabsync.NewRabbit(client, cfg.Sync.Exchange, tabID)
		if err != nil {
			client.Close()
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown sync driver %q", cfg.Sync.Driver)
}

// Listen applies other instances' writes to the store until ctx ends.
func (rt *Runtime) Listen(ctx context.Context, opts ...tabsync.ListenerOption) {
	l := tabsync.NewListener(rt.Sync, rt.Store, rt.TabID, opts...)
	go func() {
		if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			rt.lg.Error("sync_listener_stopped", err, nil)
		}
	}()
}

func (rt *Runtime) Close() error {
	var errs []error
	if rt.Sync != nil {
		errs = append(errs, rt.Sync.Close())
	}
	if rt.KV != nil {
		errs = append(errs, rt.KV.Close())
	}
	return errors.Join(errs...)
}

// Package monitor prints every storage change broadcast between instances,
// one JSON log line per change.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
	"campus-crave/internal/storage"
	"campus-crave/internal/tabsync"
)

type Monitor struct {
	sub tabsync.Subscriber
	lg  *logger.Logger
}

func New(sub tabsync.Subscriber) *Monitor {
	return &Monitor{sub: sub, lg: logger.New("sync-monitor")}
}

// Run blocks until ctx ends or the subscription closes.
func (m *Monitor) Run(ctx context.Context) error {
	changes, err := m.sub.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	m.lg.Info("monitor_started", nil)
	for c := range changes {
		fields := Summarize(c)
		fields["key"] = c.Key
		fields["origin"] = c.Origin
		fields["at"] = c.At
		m.lg.Info("storage_changed", fields)
	}
	return ctx.Err()
}

// Summarize describes a change without dumping the whole collection.
func Summarize(c tabsync.Change) map[string]any {
	out := map[string]any{"bytes": len(c.Value)}
	switch c.Key {
	case storage.KeyOrders:
		var orders []domain.Order
		if err := json.Unmarshal(c.Value, &orders); err != nil {
			out["decode_error"] = err.Error()
			return out
		}
		byStatus := map[domain.Status]int{}
		for _, o := range orders {
			byStatus[o.Status]++
		}
		out["orders"] = len(orders)
		out["by_status"] = byStatus
	case storage.KeyRevenue:
		var v float64
		if err := json.Unmarshal(c.Value, &v); err == nil {
			out["revenue"] = v
		}
	case storage.KeyUsers, storage.KeyMenu, storage.KeyReviews:
		var items []json.RawMessage
		if err := json.Unmarshal(c.Value, &items); err == nil {
			out["count"] = len(items)
		}
	}
	return out
}

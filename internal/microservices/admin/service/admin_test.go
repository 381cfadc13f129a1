package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-crave/internal/domain"
	"campus-crave/internal/storage/memory"
	"campus-crave/internal/store"
)

var now = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(memory.New(), store.WithClock(func() time.Time { return now }))
	require.NoError(t, st.Load(context.Background()))
	return st
}

func place(t *testing.T, st *store.Store, id, date string, total float64, to ...domain.Status) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, domain.Order{ID: id, Date: date, Total: total, Status: domain.StatusPending}))
	for _, s := range to {
		_, err := st.Transition(ctx, id, s)
		require.NoError(t, err)
	}
}

var delivered = []domain.Status{domain.StatusPreparing, domain.StatusReady, domain.StatusOut, domain.StatusDelivered}

func TestStats(t *testing.T) {
	st := newStore(t)
	place(t, st, "ORD-1", "2025-03-14", 500, delivered...)
	place(t, st, "ORD-2", "2025-03-14", 300)
	place(t, st, "ORD-3", "2025-03-13", 200, delivered...)

	svc := NewAdminService(st, func() time.Time { return now })
	stats := svc.Stats()
	assert.Equal(t, 500.0, stats.TodayRevenue)
	assert.Equal(t, 700.0, stats.WeeklyRevenue)
	assert.Equal(t, 2800.0, stats.MonthlyRevenue)
	assert.Equal(t, 2, stats.OrdersToday)
	assert.Equal(t, 4, stats.TotalUsers)

	require.NoError(t, svc.ResetRevenue(context.Background()))
	stats = svc.Stats()
	assert.Zero(t, stats.WeeklyRevenue)
	assert.Zero(t, stats.MonthlyRevenue)
	assert.Equal(t, 500.0, stats.TodayRevenue)
}

func TestOrdersByDay(t *testing.T) {
	st := newStore(t)
	place(t, st, "ORD-1", "2025-03-14", 500)
	place(t, st, "ORD-2", "2025-03-13", 200)
	svc := NewAdminService(st, func() time.Time { return now })

	today, err := svc.Orders("today")
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "ORD-1", today[0].ID)

	yesterday, err := svc.Orders("Yesterday")
	require.NoError(t, err)
	require.Len(t, yesterday, 1)
	assert.Equal(t, "ORD-2", yesterday[0].ID)

	_, err = svc.Orders("last-week")
	assert.ErrorIs(t, err, ErrUnknownDay)
}

func TestMenuManagement(t *testing.T) {
	st := newStore(t)
	svc := NewAdminService(st, nil)
	ctx := context.Background()

	_, err := svc.AddMenuItem(ctx, "", 100, "", "")
	assert.ErrorIs(t, err, ErrInvalidItem)
	_, err = svc.AddMenuItem(ctx, "Samosa", 0, "", "")
	assert.ErrorIs(t, err, ErrInvalidItem)

	item, err := svc.AddMenuItem(ctx, "Samosa", 60, "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultCategory, item.Category)
	assert.Equal(t, DefaultImage, item.Image)
	assert.Len(t, st.Menu(), 24)

	require.NoError(t, svc.DeleteMenuItem(ctx, item.ID))
	assert.ErrorIs(t, svc.DeleteMenuItem(ctx, item.ID), domain.ErrNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-crave/internal/domain"
	"campus-crave/internal/responder"
	"campus-crave/internal/storage/memory"
	"campus-crave/internal/store"
)

var rider = domain.User{ID: 3, Role: domain.RoleRider}

func readyOrders(t *testing.T, locs map[string]string) *store.Store {
	t.Helper()
	ctx := context.Background()
	st := store.New(memory.New())
	require.NoError(t, st.Load(ctx))
	for id, loc := range locs {
		require.NoError(t, st.Create(ctx, domain.Order{ID: id, Status: domain.StatusPending, Location: loc, Total: 100}))
		for _, to := range []domain.Status{domain.StatusPreparing, domain.StatusReady} {
			_, err := st.Transition(ctx, id, to)
			require.NoError(t, err)
		}
	}
	return st
}

func TestAcceptAndComplete(t *testing.T) {
	st := readyOrders(t, map[string]string{"ORD-A": "Admin Block", "ORD-B": "Girls Hostel 1"})
	svc := NewRiderService(st, responder.NewCanned(responder.WithDelay(0)))
	ctx := context.Background()

	assert.Len(t, svc.Board().Available, 2)

	_, err := svc.AcceptJob(ctx, rider, "ORD-A")
	require.NoError(t, err)
	b := svc.Board()
	assert.Len(t, b.Available, 1)
	assert.Len(t, b.MyJobs, 1)

	_, err = svc.CompleteDelivery(ctx, rider, "ORD-B")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	o, err := svc.CompleteDelivery(ctx, rider, "ORD-A")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, o.Status)
	assert.Equal(t, 100.0, st.Revenue())
	assert.Len(t, svc.Board().Delivered, 1)

	_, err = svc.AcceptJob(ctx, domain.User{Role: domain.RoleKitchen}, "ORD-B")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOptimizeRoute(t *testing.T) {
	st := readyOrders(t, map[string]string{
		"ORD-A": "Boys Hostel 2",
		"ORD-B": "Admin Block",
		"ORD-C": "Admin Block",
	})
	svc := NewRiderService(st, responder.NewCanned(responder.WithDelay(0)))
	ctx := context.Background()

	_, err := svc.AcceptJob(ctx, rider, "ORD-A")
	require.NoError(t, err)
	_, err = svc.OptimizeRoute(ctx)
	assert.ErrorIs(t, err, ErrNotEnoughJobs)
	assert.Contains(t, err.Error(), "currently accepted: 1")

	for _, id := range []string{"ORD-B", "ORD-C"} {
		_, err := svc.AcceptJob(ctx, rider, id)
		require.NoError(t, err)
	}
	resp, err := svc.OptimizeRoute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cafeteria -> Admin Block (2) -> Boys Hostel 2", resp.Route)
	assert.Equal(t, []string{"Cafeteria", "Admin Block (2)", "Boys Hostel 2"}, resp.Stops)
	assert.Equal(t, 3, resp.Jobs)
}

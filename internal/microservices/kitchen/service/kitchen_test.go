package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-crave/internal/domain"
	dto "campus-crave/internal/microservices/kitchen/domain/dto"
	"campus-crave/internal/storage/memory"
	"campus-crave/internal/store"
)

var chef = domain.User{ID: 2, Role: domain.RoleKitchen}

func seeded(t *testing.T, n int) *store.Store {
	t.Helper()
	st := store.New(memory.New())
	require.NoError(t, st.Load(context.Background()))
	for i := 1; i <= n; i++ {
		require.NoError(t, st.Create(context.Background(), domain.Order{
			ID:     fmt.Sprintf("ORD-%d", i),
			Status: domain.StatusPending,
			Items: []domain.MenuItem{
				{ID: 201, Name: "Zinger Burger", Price: 450, Qty: 2},
				{ID: 301, Name: "Chai", Price: 60},
			},
			Total: 960,
		}))
	}
	return st
}

func TestBoard(t *testing.T) {
	st := seeded(t, 8)
	ks := NewKitchenService(st)
	ctx := context.Background()

	_, err := ks.StartCooking(ctx, chef, "ORD-1")
	require.NoError(t, err)
	for i := 2; i <= 7; i++ {
		id := fmt.Sprintf("ORD-%d", i)
		_, err := ks.StartCooking(ctx, chef, id)
		require.NoError(t, err)
		_, err = ks.MarkReady(ctx, chef, id)
		require.NoError(t, err)
	}

	b := ks.Board()
	assert.Equal(t, 1, b.Pending)
	assert.Equal(t, 1, b.Preparing)
	assert.Len(t, b.Active, 2)
	assert.Len(t, b.Completed, RecentLimit)
	assert.Equal(t, "ORD-7", b.Completed[0].ID)
	assert.Equal(t, []dto.PrepLine{{Name: "Zinger Burger", Qty: 4}, {Name: "Chai", Qty: 2}}, b.ToPrepare)
}

func TestKitchenTransitionsAreGuarded(t *testing.T) {
	st := seeded(t, 1)
	ks := NewKitchenService(st)
	ctx := context.Background()

	_, err := ks.MarkReady(ctx, chef, "ORD-1")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = ks.StartCooking(ctx, domain.User{ID: 3, Role: domain.RoleRider}, "ORD-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = ks.StartCooking(ctx, chef, "ORD-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder(st Status) Order {
	return Order{
		ID:           "ORD-1A2B3C4D",
		StudentID:    4,
		StudentName:  "Student Sarah",
		StudentPhone: "0300-1234567",
		Items:        []MenuItem{{ID: 201, Name: "Crispy Zinger Burger", Price: 450, Qty: 1}},
		Total:        450,
		Status:       st,
		Location:     "Admin Block",
		Date:         "2026-10-17",
		Time:         "12:30",
	}
}

func TestTransitionValidPairsOnlyChangeStatus(t *testing.T) {
	pairs := []struct {
		from, to Status
		actor    Role
	}{
		{StatusPending, StatusPreparing, RoleKitchen},
		{StatusPending, StatusCancelled, RoleStudent},
		{StatusPreparing, StatusReady, RoleKitchen},
		{StatusReady, StatusOut, RoleRider},
		{StatusOut, StatusDelivered, RoleRider},
	}
	for _, p := range pairs {
		t.Run(string(p.from)+"->"+string(p.to), func(t *testing.T) {
			o := sampleOrder(p.from)
			next, err := Transition(o, p.to)
			require.NoError(t, err)
			assert.Equal(t, p.to, next.Status)

			want := o.Clone()
			want.Status = p.to
			assert.Equal(t, want, next)
			assert.Equal(t, p.from, o.Status, "input must not be mutated")

			actor, ok := Actor(p.from, p.to)
			require.True(t, ok)
			assert.Equal(t, p.actor, actor)
			assert.NoError(t, Authorize(p.actor, p.to))
		})
	}
}

func TestTransitionRejectsIllegalPairs(t *testing.T) {
	all := []Status{StatusPending, StatusPreparing, StatusReady, StatusOut, StatusDelivered, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			if CanTransition(from, to) {
				continue
			}
			_, err := Transition(sampleOrder(from), to)
			require.Error(t, err, "%s -> %s", from, to)
			assert.True(t, errors.Is(err, ErrIllegalTransition))
			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, from, te.From)
			assert.Equal(t, to, te.To)
		}
	}
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, r := range Roles {
		assert.Empty(t, NextFor(r, StatusDelivered))
		assert.Empty(t, NextFor(r, StatusCancelled))
	}
	assert.Equal(t, []Status{StatusPreparing}, NextFor(RoleKitchen, StatusPending))
	assert.Equal(t, []Status{StatusCancelled}, NextFor(RoleStudent, StatusPending))
	assert.Equal(t, []Status{StatusOut}, NextFor(RoleRider, StatusReady))
}

func TestAuthorizeWrongRole(t *testing.T) {
	err := Authorize(RoleStudent, StatusDelivered)
	assert.True(t, errors.Is(err, ErrForbidden))
	err = Authorize(RoleAdmin, StatusPending)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestUnknownEnumsFailToDecode(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":1,"role":"janitor"}`), &u)
	assert.Error(t, err)

	var o Order
	err = json.Unmarshal([]byte(`{"id":"ORD-1","status":"LOST"}`), &o)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"ORD-1","status":"OUT","items":[]}`), &o))
	assert.Equal(t, StatusOut, o.Status)
}

package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleKitchen Role = "kitchen"
	RoleRider   Role = "rider"
	RoleAdmin   Role = "admin"
)

// Roles lists the login tabs in display order.
var Roles = []Role{RoleStudent, RoleKitchen, RoleRider, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleKitchen, RoleRider, RoleAdmin:
		return true
	}
	return false
}

// Label is the name shown on the login tab and the portal header.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Customer"
	case RoleKitchen:
		return "Kitchen"
	case RoleRider:
		return "Rider"
	case RoleAdmin:
		return "Admin"
	}
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalid, s)
	}
	return r, nil
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusOut       Status = "OUT"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusOut, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalid, s)
	}
	return st, nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type edge struct{ from, to Status }

// transitions is the whole lifecycle; every target status has exactly one actor.
var transitions = map[edge]Role{
	{StatusPending, StatusPreparing}: RoleKitchen,
	{StatusPending, StatusCancelled}: RoleStudent,
	{StatusPreparing, StatusReady}:   RoleKitchen,
	{StatusReady, StatusOut}:         RoleRider,
	{StatusOut, StatusDelivered}:     RoleRider,
}

func CanTransition(from, to Status) bool {
	_, ok := transitions[edge{from, to}]
	return ok
}

// Actor returns the role allowed to move an order from one status to another.
func Actor(from, to Status) (Role, bool) {
	r, ok := transitions[edge{from, to}]
	return r, ok
}

// ActorFor returns the role that may move any order into status to.
func ActorFor(to Status) (Role, bool) {
	for e, r := range transitions {
		if e.to == to {
			return r, true
		}
	}
	return "", false
}

// Authorize checks that role is the actor for status to.
func Authorize(role Role, to Status) error {
	actor, ok := ActorFor(to)
	if !ok || actor != role {
		return fmt.Errorf("%w: %s cannot move an order to %s", ErrForbidden, role, to)
	}
	return nil
}

// NextFor lists the statuses role can move an order in status from into.
func NextFor(role Role, from Status) []Status {
	var out []Status
	for _, to := range []Status{StatusPreparing, StatusCancelled, StatusReady, StatusOut, StatusDelivered} {
		if r, ok := transitions[edge{from, to}]; ok && r == role {
			out = append(out, to)
		}
	}
	return out
}

// TransitionError is returned for any (from, to) pair outside the lifecycle table.
type TransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: illegal transition %s -> %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// Transition returns a copy of o moved to status to. Only the status changes.
func Transition(o Order, to Status) (Order, error) {
	if !CanTransition(o.Status, to) {
		return o, &TransitionError{OrderID: o.ID, From: o.Status, To: to}
	}
	next := o.Clone()
	next.Status = to
	return next, nil
}

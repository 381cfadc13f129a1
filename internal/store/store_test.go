package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-crave/internal/domain"
	"campus-crave/internal/storage"
	"campus-crave/internal/storage/memory"
	"campus-crave/internal/tabsync"
)

var fixedNow = time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

func newStore(t *testing.T, kv storage.KV, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s := New(kv, opts...)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func pendingOrder(id string, studentID int, total float64) domain.Order {
	return domain.Order{
		ID:           id,
		StudentID:    studentID,
		StudentName:  "Student Sarah",
		StudentPhone: "0300-1234567",
		Items:        []domain.MenuItem{{ID: 201, Name: "Zinger Burger", Price: total, Qty: 1}},
		Total:        total,
		Status:       domain.StatusPending,
		Location:     "Girls Hostel 1",
		Date:         "2025-03-14",
		Time:         "12:30",
	}
}

func walk(t *testing.T, s *Store, id string, to ...domain.Status) {
	t.Helper()
	for _, st := range to {
		_, err := s.Transition(context.Background(), id, st)
		require.NoError(t, err)
	}
}

func TestLoadSeedsAndPersistsMissingKeys(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)

	assert.Len(t, s.Users(), 4)
	assert.Len(t, s.Menu(), 23)
	assert.Empty(t, s.ListAll())
	assert.Empty(t, s.Reviews())
	assert.Zero(t, s.Revenue())

	for _, key := range storage.Keys {
		_, ok, err := kv.Get(context.Background(), key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}
	raw, _, _ := kv.Get(context.Background(), storage.KeyOrders)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLoadReportsCorruptData(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), storage.KeyOrders, []byte(`{not json`)))

	err := New(kv).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), storage.KeyOrders)
}

func TestCreatePrependsAndPersists(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-B", 4, 300)))

	all := s.ListAll()
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-B", all[0].ID)

	raw, _, err := kv.Get(ctx, storage.KeyOrders)
	require.NoError(t, err)
	var persisted []domain.Order
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, all, persisted)

	assert.ErrorIs(t, s.Create(ctx, pendingOrder("ORD-A", 4, 1)), ErrDuplicateOrder)

	ready := pendingOrder("ORD-C", 4, 1)
	ready.Status = domain.StatusReady
	assert.ErrorIs(t, s.Create(ctx, ready), domain.ErrInvalid)
}

func TestDeliveryAccruesRevenueOnce(t *testing.T) {
	s := newStore(t, memory.New())
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))

	walk(t, s, "ORD-A", domain.StatusPreparing, domain.StatusReady, domain.StatusOut)
	assert.Zero(t, s.Revenue())

	o, err := s.Transition(ctx, "ORD-A", domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, o.Status)
	assert.Equal(t, 450.0, s.Revenue())

	_, err = s.Transition(ctx, "ORD-A", domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Equal(t, 450.0, s.Revenue())
}

func TestIllegalTransitionLeavesStateUntouched(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))
	before, _, _ := kv.Get(ctx, storage.KeyOrders)

	_, err := s.Transition(ctx, "ORD-A", domain.StatusDelivered)
	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.StatusPending, te.From)

	got, ok := s.Get("ORD-A")
	require.True(t, ok)
	assert.Equal(t, domain.StatusPending, got.Status)
	after, _, _ := kv.Get(ctx, storage.KeyOrders)
	assert.Equal(t, before, after)

	_, err = s.Transition(ctx, "ORD-missing", domain.StatusPreparing)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelledOrderLeavesWorkQueues(t *testing.T) {
	s := newStore(t, memory.New())
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))
	assert.Len(t, s.ListByStatus(domain.StatusPending, domain.StatusPreparing), 1)

	walk(t, s, "ORD-A", domain.StatusCancelled)

	assert.Empty(t, s.ListByStatus(domain.StatusPending, domain.StatusPreparing))
	assert.Empty(t, s.ListByStatus(domain.StatusReady, domain.StatusOut))
	_, err := s.Transition(ctx, "ORD-A", domain.StatusPreparing)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Len(t, s.ListByStudent(4), 1)
}

func TestRemoveOnlyPending(t *testing.T) {
	s := newStore(t, memory.New())
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-B", 4, 300)))
	walk(t, s, "ORD-B", domain.StatusPreparing)

	removed, err := s.Remove(ctx, "ORD-A")
	require.NoError(t, err)
	assert.Equal(t, "Zinger Burger", removed.Items[0].Name)
	_, ok := s.Get("ORD-A")
	assert.False(t, ok)

	_, err = s.Remove(ctx, "ORD-B")
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = s.Remove(ctx, "ORD-A")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReviewGating(t *testing.T) {
	s := newStore(t, memory.New())
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))
	review := domain.Review{ID: 1, Name: "Student Sarah", Role: "Student", Text: "Great", Stars: 5}

	assert.ErrorIs(t, s.AddReview(ctx, "ORD-A", review), ErrNotDelivered)

	walk(t, s, "ORD-A", domain.StatusPreparing, domain.StatusReady, domain.StatusOut, domain.StatusDelivered)
	require.NoError(t, s.AddReview(ctx, "ORD-A", review))
	assert.ErrorIs(t, s.AddReview(ctx, "ORD-A", review), ErrAlreadyReviewed)

	got, _ := s.Get("ORD-A")
	assert.True(t, got.IsReviewed)
	require.Len(t, s.Reviews(), 1)
	assert.Equal(t, "ORD-A", s.Reviews()[0].OrderID)
}

func TestUsersAndMenu(t *testing.T) {
	s := newStore(t, memory.New())
	ctx := context.Background()

	u, ok := s.FindUserByEmail(" CHEF@campus.edu ")
	require.True(t, ok)
	assert.Equal(t, domain.RoleKitchen, u.Role)

	added, err := s.AddUser(ctx, domain.User{Name: "Omar", Email: "omar@campus.edu", Role: domain.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, 5, added.ID)
	_, err = s.AddUser(ctx, domain.User{Name: "Omar", Email: "OMAR@campus.edu", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, ErrEmailTaken)

	item, err := s.AddMenuItem(ctx, domain.MenuItem{Name: "Samosa", Price: 60, Category: "Snacks"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), item.ID)
	got, ok := s.MenuItem(item.ID)
	require.True(t, ok)
	assert.Equal(t, "Samosa", got.Name)

	require.NoError(t, s.DeleteMenuItem(ctx, item.ID))
	assert.ErrorIs(t, s.DeleteMenuItem(ctx, item.ID), ErrMenuItemNotFound)
	assert.Len(t, s.Menu(), 23)
}

func TestReloadRoundTrip(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	s := newStore(t, kv)
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))
	walk(t, s, "ORD-A", domain.StatusPreparing, domain.StatusReady, domain.StatusOut, domain.StatusDelivered)

	reloaded := newStore(t, kv)
	assert.Equal(t, s.ListAll(), reloaded.ListAll())
	assert.Equal(t, 450.0, reloaded.Revenue())

	require.NoError(t, reloaded.ResetRevenue(ctx))
	assert.Zero(t, newStore(t, kv).Revenue())
}

type failingKV struct {
	storage.KV
	fail    bool
	failKey string
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail || (f.failKey != "" && key == f.failKey) {
		return errors.New("disk full")
	}
	return f.KV.Set(ctx, key, value)
}

func TestPersistFailureRollsBack(t *testing.T) {
	kv := &failingKV{KV: memory.New()}
	s := newStore(t, kv)
	ctx := context.Background()

	kv.fail = true
	err := s.Create(ctx, pendingOrder("ORD-A", 4, 450))
	require.Error(t, err)
	assert.Empty(t, s.ListAll())
}

func TestFailedDeliveryLeavesStorageUndelivered(t *testing.T) {
	kv := &failingKV{KV: memory.New()}
	s := newStore(t, kv)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))
	walk(t, s, "ORD-A", domain.StatusPreparing, domain.StatusReady, domain.StatusOut)

	kv.failKey = storage.KeyRevenue
	_, err := s.Transition(ctx, "ORD-A", domain.StatusDelivered)
	require.Error(t, err)

	o, ok := s.Get("ORD-A")
	require.True(t, ok)
	assert.Equal(t, domain.StatusOut, o.Status)
	assert.Zero(t, s.Revenue())

	kv.failKey = ""
	reloaded := newStore(t, kv)
	o, ok = reloaded.Get("ORD-A")
	require.True(t, ok)
	assert.Equal(t, domain.StatusOut, o.Status)
	assert.Zero(t, reloaded.Revenue())
}

func TestApplyReplacesCollectionWithoutPersisting(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)

	raw, err := json.Marshal([]domain.Order{pendingOrder("ORD-X", 4, 99)})
	require.NoError(t, err)
	require.NoError(t, s.Apply(storage.KeyOrders, raw))
	require.NoError(t, s.Apply("some_other_key", []byte(`1`)))
	assert.Error(t, s.Apply(storage.KeyRevenue, []byte(`"lots"`)))

	require.Len(t, s.ListAll(), 1)
	stored, _, _ := kv.Get(context.Background(), storage.KeyOrders)
	assert.JSONEq(t, `[]`, string(stored))
}

type recordingPublisher struct{ changes []tabsync.Change }

func (p *recordingPublisher) Publish(_ context.Context, c tabsync.Change) error {
	p.changes = append(p.changes, c)
	return nil
}

func TestDeliveryPublishesOrdersAndRevenue(t *testing.T) {
	pub := &recordingPublisher{}
	s := newStore(t, memory.New(), WithPublisher(pub, "tab-1"))
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, pendingOrder("ORD-A", 4, 450)))
	walk(t, s, "ORD-A", domain.StatusPreparing, domain.StatusReady, domain.StatusOut)
	pub.changes = nil

	walk(t, s, "ORD-A", domain.StatusDelivered)

	require.Len(t, pub.changes, 2)
	assert.Equal(t, storage.KeyOrders, pub.changes[0].Key)
	assert.Equal(t, storage.KeyRevenue, pub.changes[1].Key)
	assert.Equal(t, "tab-1", pub.changes[1].Origin)
	assert.JSONEq(t, `450`, string(pub.changes[1].Value))
}

func TestChangesReachOtherTab(t *testing.T) {
	kv := memory.New()
	hub := tabsync.NewHub()
	t.Cleanup(func() { _ = hub.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	kitchen := newStore(t, kv, WithPublisher(hub, "kitchen-tab"))
	student := newStore(t, kv, WithPublisher(hub, "student-tab"))

	applied := make(chan tabsync.Change, 8)
	l := tabsync.NewListener(hub, kitchen, "kitchen-tab", tabsync.OnApplied(func(c tabsync.Change) { applied <- c }))
	go func() { _ = l.Run(ctx) }()
	// wait for the listener to subscribe
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, student.Create(ctx, pendingOrder("ORD-A", 4, 450)))

	select {
	case c := <-applied:
		assert.Equal(t, storage.KeyOrders, c.Key)
	case <-time.After(time.Second):
		t.Fatal("change never applied")
	}
	got, ok := kitchen.Get("ORD-A")
	require.True(t, ok)
	assert.Equal(t, domain.StatusPending, got.Status)
}

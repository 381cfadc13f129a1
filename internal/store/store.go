// Package store is the single source of truth every role view reads from.
// It keeps the five collections in memory and writes each changed
// collection back through the persistence port as a whole.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
	"campus-crave/internal/seed"
	"campus-crave/internal/storage"
	"campus-crave/internal/tabsync"
)

var (
	ErrOrderNotFound    = fmt.Errorf("%w: order", domain.ErrNotFound)
	ErrMenuItemNotFound = fmt.Errorf("%w: menu item", domain.ErrNotFound)
	ErrDuplicateOrder   = fmt.Errorf("%w: order id already exists", domain.ErrConflict)
	ErrEmailTaken       = fmt.Errorf("%w: an account with this email already exists", domain.ErrConflict)
	ErrNotDelivered     = fmt.Errorf("%w: only delivered orders can be reviewed", domain.ErrConflict)
	ErrAlreadyReviewed  = fmt.Errorf("%w: order already reviewed", domain.ErrConflict)
	ErrNotPending       = fmt.Errorf("%w: order is no longer pending", domain.ErrConflict)
	ErrUnknownKey       = errors.New("store: unknown key")
)

type Store struct {
	kv     storage.KV
	pub    tabsync.Publisher
	origin string
	seed   seed.Data
	clock  func() time.Time
	lg     *logger.Logger

	mu      sync.RWMutex
	users   []domain.User
	menu    []domain.MenuItem
	orders  []domain.Order
	reviews []domain.Review
	revenue float64
}

type Option func(*Store)

// WithPublisher announces every write to other tabs, tagged with origin.
func WithPublisher(p tabsync.Publisher, origin string) Option {
	return func(s *Store) {
		if p != nil {
			s.pub = p
			s.origin = origin
		}
	}
}

func WithSeed(d seed.Data) Option {
	return func(s *Store) { s.seed = d }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New returns an empty store; call Load before use.
func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		pub:   tabsync.Nop{},
		seed:  seed.Default(),
		clock: time.Now,
		lg:    logger.New("store"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load reads every collection from storage. Keys never written start from
// the seed (users, menu) or empty (orders, reviews, zero revenue) and are
// written back so other tabs find them.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []string
	for _, key := range storage.Keys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
		if !ok {
			s.seedKey(key)
			missing = append(missing, key)
			continue
		}
		if err := s.decode(key, raw); err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
	}
	if len(missing) > 0 {
		s.lg.Info("store_seeded", map[string]any{"keys": missing})
		return s.persist(ctx, missing...)
	}
	return nil
}

func (s *Store) seedKey(key string) {
	switch key {
	case storage.KeyUsers:
		s.users = append([]domain.User(nil), s.seed.Users...)
	case storage.KeyMenu:
		s.menu = append([]domain.MenuItem(nil), s.seed.Menu...)
	case storage.KeyOrders:
		s.orders = []domain.Order{}
	case storage.KeyReviews:
		s.reviews = []domain.Review{}
	case storage.KeyRevenue:
		s.revenue = 0
	}
}

// Apply replaces one collection from a serialized value written by another
// tab. Nothing is persisted: the value already is. Keys the store does not
// own are ignored.
func (s *Store) Apply(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.decode(key, value)
	if errors.Is(err, ErrUnknownKey) {
		return nil
	}
	return err
}

func (s *Store) decode(key string, raw []byte) error {
	switch key {
	case storage.KeyUsers:
		var v []domain.User
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.users = v
	case storage.KeyMenu:
		var v []domain.MenuItem
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.menu = v
	case storage.KeyOrders:
		var v []domain.Order
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.orders = v
	case storage.KeyReviews:
		var v []domain.Review
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.reviews = v
	case storage.KeyRevenue:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.revenue = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func (s *Store) encode(key string) ([]byte, error) {
	switch key {
	case storage.KeyUsers:
		return json.Marshal(nonNil(s.users))
	case storage.KeyMenu:
		return json.Marshal(nonNil(s.menu))
	case storage.KeyOrders:
		return json.Marshal(nonNil(s.orders))
	case storage.KeyReviews:
		return json.Marshal(nonNil(s.reviews))
	case storage.KeyRevenue:
		return json.Marshal(s.revenue)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// persist writes the listed collections and announces them. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		raw, err := s.encode(key)
		if err != nil {
			return err
		}
		if err := s.kv.Set(ctx, key, raw); err != nil {
			return fmt.Errorf("persist %s: %w", key, err)
		}
		c := tabsync.Change{Key: key, Value: raw, Origin: s.origin, At: s.clock().UTC()}
		if err := s.pub.Publish(ctx, c); err != nil {
			// storage already holds the value; other tabs catch up on their next write or reload
			s.lg.Error("sync_publish_failed", err, map[string]any{"key": key})
		}
	}
	return nil
}

// commit runs mutate on the live collections, persists keys, and restores
// the previous state if persisting fails.
func (s *Store) commit(ctx context.Context, mutate func() error, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := mutate(); err != nil {
		s.restore(snapshot)
		return err
	}
	if err := s.persist(ctx, keys...); err != nil {
		s.restore(snapshot)
		// keys written before the failure still hold the new state
		if rerr := s.persist(ctx, keys...); rerr != nil {
			s.lg.Error("rollback_persist_failed", rerr, map[string]any{"keys": keys})
		}
		return err
	}
	return nil
}

type state struct {
	users   []domain.User
	menu    []domain.MenuItem
	orders  []domain.Order
	reviews []domain.Review
	revenue float64
}

// snapshot relies on mutations always building new slices.
func (s *Store) snapshot() state {
	return state{users: s.users, menu: s.menu, orders: s.orders, reviews: s.reviews, revenue: s.revenue}
}

func (s *Store) restore(st state) {
	s.users, s.menu, s.orders, s.reviews, s.revenue = st.users, st.menu, st.orders, st.reviews, st.revenue
}

// ---- orders ----

// Create puts a new PENDING order at the head of the list.
func (s *Store) Create(ctx context.Context, o domain.Order) error {
	if o.Status != domain.StatusPending {
		return fmt.Errorf("%w: new orders start as %s, got %s", domain.ErrInvalid, domain.StatusPending, o.Status)
	}
	return s.commit(ctx, func() error {
		if s.indexOf(o.ID) >= 0 {
			return ErrDuplicateOrder
		}
		next := make([]domain.Order, 0, len(s.orders)+1)
		next = append(next, o.Clone())
		next = append(next, s.orders...)
		s.orders = next
		return nil
	}, storage.KeyOrders)
}

// Transition moves an order along the lifecycle table. Entering DELIVERED
// adds the order's total to revenue in the same critical section, so the
// amount always comes from the order that was actually transitioned.
func (s *Store) Transition(ctx context.Context, id string, to domain.Status) (domain.Order, error) {
	var updated domain.Order
	keys := []string{storage.KeyOrders}
	if to == domain.StatusDelivered {
		keys = append(keys, storage.KeyRevenue)
	}
	err := s.commit(ctx, func() error {
		i := s.indexOf(id)
		if i < 0 {
			return ErrOrderNotFound
		}
		next, err := domain.Transition(s.orders[i], to)
		if err != nil {
			return err
		}
		s.orders = s.replaced(i, next)
		if to == domain.StatusDelivered {
			s.revenue += next.Total
		}
		updated = next
		return nil
	}, keys...)
	if err != nil {
		return domain.Order{}, err
	}
	s.lg.Info("order_status_changed", map[string]any{"order_id": id, "new_status": to})
	return updated, nil
}

// Remove deletes a PENDING order and returns it, so its lines can be put back in a cart.
func (s *Store) Remove(ctx context.Context, id string) (domain.Order, error) {
	var removed domain.Order
	err := s.commit(ctx, func() error {
		i := s.indexOf(id)
		if i < 0 {
			return ErrOrderNotFound
		}
		if s.orders[i].Status != domain.StatusPending {
			return ErrNotPending
		}
		removed = s.orders[i].Clone()
		next := make([]domain.Order, 0, len(s.orders)-1)
		next = append(next, s.orders[:i]...)
		next = append(next, s.orders[i+1:]...)
		s.orders = next
		return nil
	}, storage.KeyOrders)
	return removed, err
}

func (s *Store) Get(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Order{}, false
	}
	return s.orders[i].Clone(), true
}

// ListAll returns every order, newest first.
func (s *Store) ListAll() []domain.Order {
	return s.filter(func(domain.Order) bool { return true })
}

func (s *Store) ListByStudent(studentID int) []domain.Order {
	return s.filter(func(o domain.Order) bool { return o.StudentID == studentID })
}

func (s *Store) ListByStatus(statuses ...domain.Status) []domain.Order {
	return s.filter(func(o domain.Order) bool {
		for _, st := range statuses {
			if o.Status == st {
				return true
			}
		}
		return false
	})
}

func (s *Store) filter(keep func(domain.Order) bool) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (s *Store) indexOf(id string) int {
	for i, o := range s.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) replaced(i int, o domain.Order) []domain.Order {
	next := append([]domain.Order(nil), s.orders...)
	next[i] = o
	return next
}

// ---- reviews ----

// AddReview stores the one review a delivered order may get and flags the order.
func (s *Store) AddReview(ctx context.Context, orderID string, r domain.Review) error {
	return s.commit(ctx, func() error {
		i := s.indexOf(orderID)
		if i < 0 {
			return ErrOrderNotFound
		}
		o := s.orders[i]
		if o.Status != domain.StatusDelivered {
			return ErrNotDelivered
		}
		if o.IsReviewed {
			return ErrAlreadyReviewed
		}
		r.OrderID = orderID
		next := make([]domain.Review, 0, len(s.reviews)+1)
		next = append(next, r)
		next = append(next, s.reviews...)
		s.reviews = next

		reviewed := o.Clone()
		reviewed.IsReviewed = true
		s.orders = s.replaced(i, reviewed)
		return nil
	}, storage.KeyReviews, storage.KeyOrders)
}

func (s *Store) Reviews() []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Review(nil), s.reviews...)
}

// ---- users ----

func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User(nil), s.users...)
}

// FindUserByEmail matches case-insensitively.
func (s *Store) FindUserByEmail(email string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, true
		}
	}
	return domain.User{}, false
}

// AddUser appends u with the next sequential id.
func (s *Store) AddUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := s.commit(ctx, func() error {
		for _, existing := range s.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return ErrEmailTaken
			}
		}
		u.ID = len(s.users) + 1
		for _, existing := range s.users {
			if existing.ID >= u.ID {
				u.ID = existing.ID + 1
			}
		}
		s.users = append(append([]domain.User(nil), s.users...), u)
		return nil
	}, storage.KeyUsers)
	return u, err
}

// ---- menu ----

func (s *Store) Menu() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MenuItem(nil), s.menu...)
}

func (s *Store) MenuItem(id int64) (domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.menu {
		if m.ID == id {
			return m, true
		}
	}
	return domain.MenuItem{}, false
}

// AddMenuItem appends item, giving it a time-based id when it has none.
func (s *Store) AddMenuItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	err := s.commit(ctx, func() error {
		if item.ID == 0 {
			item.ID = s.clock().UnixMilli()
		}
		ids := make([]int64, 0, len(s.menu))
		for _, m := range s.menu {
			ids = append(ids, m.ID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			if id == item.ID {
				item.ID++
			}
		}
		item.Qty = 0
		s.menu = append(append([]domain.MenuItem(nil), s.menu...), item)
		return nil
	}, storage.KeyMenu)
	return item, err
}

func (s *Store) DeleteMenuItem(ctx context.Context, id int64) error {
	return s.commit(ctx, func() error {
		next := make([]domain.MenuItem, 0, len(s.menu))
		for _, m := range s.menu {
			if m.ID != id {
				next = append(next, m)
			}
		}
		if len(next) == len(s.menu) {
			return ErrMenuItemNotFound
		}
		s.menu = next
		return nil
	}, storage.KeyMenu)
}

// ---- revenue ----

func (s *Store) Revenue() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revenue
}

func (s *Store) ResetRevenue(ctx context.Context) error {
	return s.commit(ctx, func() error {
		s.revenue = 0
		return nil
	}, storage.KeyRevenue)
}

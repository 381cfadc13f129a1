package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
	dto "campus-crave/internal/microservices/order/domain/dto"
	"campus-crave/internal/store"
)

var (
	ErrEmptyCart       = fmt.Errorf("%w: cart is empty", domain.ErrInvalid)
	ErrMissingPhone    = fmt.Errorf("%w: please enter a phone number for the rider", domain.ErrInvalid)
	ErrUnknownLocation = fmt.Errorf("%w: unknown delivery location", domain.ErrInvalid)
	ErrEmptyReview     = fmt.Errorf("%w: please write a review", domain.ErrInvalid)
	ErrNotOwner        = fmt.Errorf("%w: order belongs to another student", domain.ErrForbidden)
	ErrNotDelivered    = store.ErrNotDelivered
	ErrAlreadyReviewed = store.ErrAlreadyReviewed
)

type Store interface {
	Menu() []domain.MenuItem
	MenuItem(id int64) (domain.MenuItem, bool)
	Create(ctx context.Context, o domain.Order) error
	Get(id string) (domain.Order, bool)
	ListByStudent(studentID int) []domain.Order
	Transition(ctx context.Context, id string, to domain.Status) (domain.Order, error)
	Remove(ctx context.Context, id string) (domain.Order, error)
	AddReview(ctx context.Context, orderID string, r domain.Review) error
	FindUserByEmail(email string) (domain.User, bool)
}

type OrderServiceInterface interface {
	Menu() []dto.MenuCategory
	Resolve(lines []dto.CartLine) ([]domain.MenuItem, error)
	Checkout(ctx context.Context, user domain.User, items []domain.MenuItem, location, phone string) (domain.Order, error)
	MyOrders(user domain.User) []domain.Order
	Cancel(ctx context.Context, user domain.User, id string) (domain.Order, error)
	Modify(ctx context.Context, user domain.User, id string) ([]domain.MenuItem, error)
	SubmitReview(ctx context.Context, user domain.User, id string, stars int, text string) (domain.Review, error)
}

type OrderService struct {
	store Store
	clock func() time.Time
	newID func() string
	lg    *logger.Logger
}

func NewOrderService(st Store, clock func() time.Time) OrderServiceInterface {
	if clock == nil {
		clock = time.Now
	}
	return &OrderService{store: st, clock: clock, newID: NewOrderID, lg: logger.New("order-service")}
}

// NewOrderID returns ORD- followed by eight upper-case hex characters.
func NewOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Menu groups items under their category, categories in first-seen order.
func (s *OrderService) Menu() []dto.MenuCategory {
	var out []dto.MenuCategory
	index := map[string]int{}
	for _, m := range s.store.Menu() {
		i, ok := index[m.Category]
		if !ok {
			i = len(out)
			index[m.Category] = i
			out = append(out, dto.MenuCategory{Name: m.Category})
		}
		out[i].Items = append(out[i].Items, m)
	}
	return out
}

// Resolve turns menu ids and quantities into priced cart lines.
func (s *OrderService) Resolve(lines []dto.CartLine) ([]domain.MenuItem, error) {
	var cart domain.Cart
	for _, l := range lines {
		m, ok := s.store.MenuItem(l.MenuItemID)
		if !ok {
			return nil, fmt.Errorf("%w: menu item %d", store.ErrMenuItemNotFound, l.MenuItemID)
		}
		cart.Add(m)
		cart.UpdateQty(m.ID, l.Qty-1)
	}
	return cart.Items(), nil
}

func (s *OrderService) Checkout(ctx context.Context, user domain.User, items []domain.MenuItem, location, phone string) (domain.Order, error) {
	if user.Role != domain.RoleStudent {
		return domain.Order{}, fmt.Errorf("%w: only students place orders", domain.ErrForbidden)
	}
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = s.phoneOnFile(user)
	}
	if phone == "" {
		return domain.Order{}, ErrMissingPhone
	}
	if !domain.ValidLocation(location) {
		return domain.Order{}, fmt.Errorf("%w: %q", ErrUnknownLocation, location)
	}

	now := s.clock()
	order := domain.Order{
		ID:           s.newID(),
		StudentID:    user.ID,
		StudentName:  user.Name,
		StudentPhone: phone,
		Items:        append([]domain.MenuItem(nil), items...),
		Total:        domain.LineTotal(items),
		Status:       domain.StatusPending,
		Location:     location,
		Date:         now.Format(time.DateOnly),
		Time:         now.Format("15:04"),
	}
	if err := s.store.Create(ctx, order); err != nil {
		return domain.Order{}, err
	}
	s.lg.Info("order_placed", map[string]any{"order_id": order.ID, "student_id": user.ID, "total": order.Total})
	return order, nil
}

// phoneOnFile prefers the stored account over the caller's copy, which may
// come from token claims that carry no phone.
func (s *OrderService) phoneOnFile(user domain.User) string {
	if u, ok := s.store.FindUserByEmail(user.Email); ok && u.ID == user.ID && u.Phone != "" {
		return u.Phone
	}
	return user.Phone
}

func (s *OrderService) MyOrders(user domain.User) []domain.Order {
	return s.store.ListByStudent(user.ID)
}

func (s *OrderService) owned(user domain.User, id string) (domain.Order, error) {
	o, ok := s.store.Get(id)
	if !ok {
		return domain.Order{}, store.ErrOrderNotFound
	}
	if o.StudentID != user.ID {
		return domain.Order{}, ErrNotOwner
	}
	return o, nil
}

func (s *OrderService) Cancel(ctx context.Context, user domain.User, id string) (domain.Order, error) {
	if err := domain.Authorize(user.Role, domain.StatusCancelled); err != nil {
		return domain.Order{}, err
	}
	if _, err := s.owned(user, id); err != nil {
		return domain.Order{}, err
	}
	return s.store.Transition(ctx, id, domain.StatusCancelled)
}

// Modify withdraws a pending order and hands its lines back for the cart.
func (s *OrderService) Modify(ctx context.Context, user domain.User, id string) ([]domain.MenuItem, error) {
	if _, err := s.owned(user, id); err != nil {
		return nil, err
	}
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	s.lg.Info("order_withdrawn_for_changes", map[string]any{"order_id": id})
	return removed.Items, nil
}

func (s *OrderService) SubmitReview(ctx context.Context, user domain.User, id string, stars int, text string) (domain.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Review{}, ErrEmptyReview
	}
	o, err := s.owned(user, id)
	if err != nil {
		return domain.Review{}, err
	}
	now := s.clock()
	r := domain.Review{
		ID:    now.UnixMilli(),
		Name:  o.StudentName,
		Role:  "Student",
		Text:  text,
		Stars: min(max(stars, 1), 5),
		Date:  now.Format(time.DateOnly),
	}
	if err := s.store.AddReview(ctx, id, r); err != nil {
		return domain.Review{}, err
	}
	r.OrderID = id
	return r, nil
}

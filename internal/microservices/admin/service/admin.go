package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
	dto "campus-crave/internal/microservices/admin/domain/dto"
)

const (
	DefaultCategory = "Fast Food"
	DefaultImage    = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c"

	DayToday     = "today"
	DayYesterday = "yesterday"
)

var (
	ErrInvalidItem = fmt.Errorf("%w: menu item needs a name and a positive price", domain.ErrInvalid)
	ErrUnknownDay  = fmt.Errorf("%w: day must be today or yesterday", domain.ErrInvalid)
)

type Store interface {
	ListAll() []domain.Order
	Users() []domain.User
	Revenue() float64
	ResetRevenue(ctx context.Context) error
	AddMenuItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
}

type AdminServiceInterface interface {
	Stats() dto.Stats
	Orders(day string) ([]domain.Order, error)
	ResetRevenue(ctx context.Context) error
	AddMenuItem(ctx context.Context, name string, price float64, category, image string) (domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
	Users() []domain.User
}

type AdminService struct {
	store Store
	clock func() time.Time
	lg    *logger.Logger
}

func NewAdminService(st Store, clock func() time.Time) AdminServiceInterface {
	if clock == nil {
		clock = time.Now
	}
	return &AdminService{store: st, clock: clock, lg: logger.New("admin-service")}
}

// Stats derives today's figures from the orders. Weekly revenue is the
// running accumulator and monthly is a flat four weeks of it.
func (s *AdminService) Stats() dto.Stats {
	today := s.clock().Format(time.DateOnly)
	var st dto.Stats
	for _, o := range s.store.ListAll() {
		if o.Date != today {
			continue
		}
		st.OrdersToday++
		if o.Status == domain.StatusDelivered {
			st.TodayRevenue += o.Total
		}
	}
	st.WeeklyRevenue = s.store.Revenue()
	st.MonthlyRevenue = st.WeeklyRevenue * 4
	st.TotalUsers = len(s.store.Users())
	return st
}

func (s *AdminService) Orders(day string) ([]domain.Order, error) {
	now := s.clock()
	var date string
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "", DayToday:
		date = now.Format(time.DateOnly)
	case DayYesterday:
		date = now.AddDate(0, 0, -1).Format(time.DateOnly)
	default:
		return nil, ErrUnknownDay
	}
	var out []domain.Order
	for _, o := range s.store.ListAll() {
		if o.Date == date {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *AdminService) ResetRevenue(ctx context.Context) error {
	if err := s.store.ResetRevenue(ctx); err != nil {
		return err
	}
	s.lg.Info("revenue_reset", nil)
	return nil
}

func (s *AdminService) AddMenuItem(ctx context.Context, name string, price float64, category, image string) (domain.MenuItem, error) {
	name = strings.TrimSpace(name)
	if name == "" || price <= 0 {
		return domain.MenuItem{}, ErrInvalidItem
	}
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}
	if strings.TrimSpace(image) == "" {
		image = DefaultImage
	}
	item, err := s.store.AddMenuItem(ctx, domain.MenuItem{Name: name, Price: price, Category: category, Image: image})
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.lg.Info("menu_item_added", map[string]any{"item_id": item.ID, "name": item.Name})
	return item, nil
}

func (s *AdminService) DeleteMenuItem(ctx context.Context, id int64) error {
	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.lg.Info("menu_item_deleted", map[string]any{"item_id": id})
	return nil
}

func (s *AdminService) Users() []domain.User {
	users := s.store.Users()
	for i := range users {
		users[i].Password = ""
	}
	return users
}

package service

import (
	"context"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
	dto "campus-crave/internal/microservices/kitchen/domain/dto"
)

// RecentLimit caps the completed list on the board.
const RecentLimit = 5

type Store interface {
	ListByStatus(statuses ...domain.Status) []domain.Order
	Transition(ctx context.Context, id string, to domain.Status) (domain.Order, error)
}

type KitchenServiceInterface interface {
	Board() dto.Board
	StartCooking(ctx context.Context, actor domain.User, id string) (domain.Order, error)
	MarkReady(ctx context.Context, actor domain.User, id string) (domain.Order, error)
}

type KitchenService struct {
	store Store
	lg    *logger.Logger
}

func NewKitchenService(st Store) KitchenServiceInterface {
	return &KitchenService{store: st, lg: logger.New("kitchen-service")}
}

func (ks *KitchenService) Board() dto.Board {
	active := ks.store.ListByStatus(domain.StatusPending, domain.StatusPreparing)
	completed := ks.store.ListByStatus(domain.StatusReady, domain.StatusOut, domain.StatusDelivered)
	if len(completed) > RecentLimit {
		completed = completed[:RecentLimit]
	}
	b := dto.Board{Active: active, Completed: completed, ToPrepare: Summarize(active)}
	for _, o := range active {
		switch o.Status {
		case domain.StatusPending:
			b.Pending++
		case domain.StatusPreparing:
			b.Preparing++
		}
	}
	return b
}

// Summarize totals quantities per dish across orders, dishes in first-seen order.
func Summarize(orders []domain.Order) []dto.PrepLine {
	var out []dto.PrepLine
	index := map[string]int{}
	for _, o := range orders {
		for _, it := range o.Items {
			i, ok := index[it.Name]
			if !ok {
				i = len(out)
				index[it.Name] = i
				out = append(out, dto.PrepLine{Name: it.Name})
			}
			out[i].Qty += it.Quantity()
		}
	}
	return out
}

func (ks *KitchenService) StartCooking(ctx context.Context, actor domain.User, id string) (domain.Order, error) {
	return ks.move(ctx, actor, id, domain.StatusPreparing)
}

func (ks *KitchenService) MarkReady(ctx context.Context, actor domain.User, id string) (domain.Order, error) {
	return ks.move(ctx, actor, id, domain.StatusReady)
}

func (ks *KitchenService) move(ctx context.Context, actor domain.User, id string, to domain.Status) (domain.Order, error) {
	if err := domain.Authorize(actor.Role, to); err != nil {
		return domain.Order{}, err
	}
	o, err := ks.store.Transition(ctx, id, to)
	if err != nil {
		ks.lg.Warn("kitchen_transition_rejected", map[string]any{"order_id": id, "to": to, "reason": err.Error()})
		return domain.Order{}, err
	}
	return o, nil
}

package service

import (
	"context"
	"fmt"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
	dto "campus-crave/internal/microservices/rider/domain/dto"
	"campus-crave/internal/responder"
	"campus-crave/internal/route"
)

const (
	RecentLimit  = 5
	MinRouteJobs = 2
)

var ErrNotEnoughJobs = fmt.Errorf("%w: accept at least %d jobs to optimize the route", domain.ErrInvalid, MinRouteJobs)

type Store interface {
	ListByStatus(statuses ...domain.Status) []domain.Order
	Transition(ctx context.Context, id string, to domain.Status) (domain.Order, error)
}

type RiderServiceInterface interface {
	Board() dto.Board
	AcceptJob(ctx context.Context, actor domain.User, id string) (domain.Order, error)
	CompleteDelivery(ctx context.Context, actor domain.User, id string) (domain.Order, error)
	OptimizeRoute(ctx context.Context) (dto.RouteResponse, error)
}

// RiderService shares one job pool across riders: OUT orders are not tied
// to the rider who accepted them.
type RiderService struct {
	store Store
	bot   responder.Responder
	lg    *logger.Logger
}

func NewRiderService(st Store, bot responder.Responder) RiderServiceInterface {
	return &RiderService{store: st, bot: bot, lg: logger.New("rider-service")}
}

func (s *RiderService) Board() dto.Board {
	delivered := s.store.ListByStatus(domain.StatusDelivered)
	if len(delivered) > RecentLimit {
		delivered = delivered[:RecentLimit]
	}
	return dto.Board{
		Available: s.store.ListByStatus(domain.StatusReady),
		MyJobs:    s.store.ListByStatus(domain.StatusOut),
		Delivered: delivered,
	}
}

func (s *RiderService) AcceptJob(ctx context.Context, actor domain.User, id string) (domain.Order, error) {
	return s.move(ctx, actor, id, domain.StatusOut)
}

// CompleteDelivery also books the order total into revenue, inside the store.
func (s *RiderService) CompleteDelivery(ctx context.Context, actor domain.User, id string) (domain.Order, error) {
	return s.move(ctx, actor, id, domain.StatusDelivered)
}

func (s *RiderService) move(ctx context.Context, actor domain.User, id string, to domain.Status) (domain.Order, error) {
	if err := domain.Authorize(actor.Role, to); err != nil {
		return domain.Order{}, err
	}
	o, err := s.store.Transition(ctx, id, to)
	if err != nil {
		return domain.Order{}, err
	}
	s.lg.Info("rider_job_updated", map[string]any{"order_id": id, "status": to, "rider_id": actor.ID})
	return o, nil
}

func (s *RiderService) OptimizeRoute(ctx context.Context) (dto.RouteResponse, error) {
	jobs := s.store.ListByStatus(domain.StatusOut)
	if len(jobs) < MinRouteJobs {
		return dto.RouteResponse{}, fmt.Errorf("%w (currently accepted: %d)", ErrNotEnoughJobs, len(jobs))
	}
	locations := make([]string, 0, len(jobs))
	for _, j := range jobs {
		locations = append(locations, j.Location)
	}
	text, err := s.bot.Respond(ctx, responder.RoutePrompt, locations)
	if err != nil {
		return dto.RouteResponse{}, err
	}
	return dto.RouteResponse{Route: text, Stops: route.Stops(text), Jobs: len(jobs)}, nil
}

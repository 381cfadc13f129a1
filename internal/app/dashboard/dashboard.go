// Package dashboard runs the terminal UI against a bootstrapped runtime and
// repaints it whenever another instance changes the shared data.
package dashboard

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"campus-crave/internal/app/bootstrap"
	"campus-crave/internal/common/logger"
	adminservice "campus-crave/internal/microservices/admin/service"
	authservice "campus-crave/internal/microservices/auth/service"
	botservice "campus-crave/internal/microservices/bot/service"
	kitchenservice "campus-crave/internal/microservices/kitchen/service"
	orderservice "campus-crave/internal/microservices/order/service"
	riderservice "campus-crave/internal/microservices/rider/service"
	"campus-crave/internal/tabsync"
	"campus-crave/internal/tui"
)

// Services wires the role services over the runtime's store.
func Services(rt *bootstrap.Runtime, clock func() time.Time) tui.Services {
	if clock == nil {
		clock = time.Now
	}
	st := rt.Store
	return tui.Services{
		Auth: authservice.NewAuthService(st, authservice.Options{
			SharedPassword: rt.Config.Auth.SharedPassword,
			Secret:         []byte(rt.Config.Auth.JWTSecret),
			TTL:            rt.Config.Auth.TokenTTL,
			Clock:          clock,
		}),
		Orders:  orderservice.NewOrderService(st, clock),
		Kitchen: kitchenservice.NewKitchenService(st),
		Rider:   riderservice.NewRiderService(st, rt.Bot),
		Admin:   adminservice.NewAdminService(st, clock),
		Bot:     botservice.NewBotService(rt.Bot),
	}
}

// Run blocks until the user quits or ctx ends.
func Run(ctx context.Context, rt *bootstrap.Runtime, launch tui.Launch) error {
	lg := logger.New("dashboard")

	app := tui.NewApp(Services(rt, nil), launch, tui.WithContext(ctx))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	rt.Listen(ctx, tabsync.OnApplied(func(c tabsync.Change) {
		p.Send(tui.StoreChangedMsg{Key: c.Key})
	}))

	lg.Info("service_started", map[string]any{"tab": rt.TabID, "view": launch.View, "email": launch.Email})
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	lg.Info("service_stopped", nil)
	return err
}

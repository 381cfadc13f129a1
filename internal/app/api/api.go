// Package api serves every role's actions over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"campus-crave/internal/app/bootstrap"
	"campus-crave/internal/common/httpx"
	"campus-crave/internal/common/logger"
	"campus-crave/internal/config"
	adminhandlers "campus-crave/internal/microservices/admin/handlers"
	adminservice "campus-crave/internal/microservices/admin/service"
	authhandlers "campus-crave/internal/microservices/auth/handlers"
	authservice "campus-crave/internal/microservices/auth/service"
	bothandlers "campus-crave/internal/microservices/bot/handlers"
	botservice "campus-crave/internal/microservices/bot/service"
	kitchenhandlers "campus-crave/internal/microservices/kitchen/handlers"
	kitchenservice "campus-crave/internal/microservices/kitchen/service"
	orderhandlers "campus-crave/internal/microservices/order/handlers"
	orderservice "campus-crave/internal/microservices/order/service"
	riderhandlers "campus-crave/internal/microservices/rider/handlers"
	riderservice "campus-crave/internal/microservices/rider/service"
	"campus-crave/internal/responder"
	"campus-crave/internal/store"
)

type Deps struct {
	Store *store.Store
	Bot   responder.Responder
	Auth  config.AuthConfig
	Clock func() time.Time
}

// NewHandler builds the full route table.
func NewHandler(d Deps) http.Handler {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	auth := authservice.NewAuthService(d.Store, authservice.Options{
		SharedPassword: d.Auth.SharedPassword,
		Secret:         []byte(d.Auth.JWTSecret),
		TTL:            d.Auth.TokenTTL,
		Clock:          d.Clock,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	authhandlers.NewAuthHandler(auth).Routes(mux)
	orderhandlers.NewOrderHandler(orderservice.NewOrderService(d.Store, d.Clock)).Routes(mux, auth)
	kitchenhandlers.NewKitchenHandler(kitchenservice.NewKitchenService(d.Store)).Routes(mux, auth)
	riderhandlers.NewRiderHandler(riderservice.NewRiderService(d.Store, d.Bot)).Routes(mux, auth)
	adminhandlers.NewAdminHandler(adminservice.NewAdminService(d.Store, d.Clock)).Routes(mux, auth)
	bothandlers.NewBotHandler(botservice.NewBotService(d.Bot)).Routes(mux, auth)

	return httpx.Logging(logger.New("api"), mux)
}

// Run serves the API on port (the configured one when zero) until ctx ends.
func Run(ctx context.Context, rt *bootstrap.Runtime, port int) error {
	lg := logger.New("api")
	if port == 0 {
		port = rt.Config.HTTP.Port
	}
	rt.Listen(ctx)

	h := NewHandler(Deps{Store: rt.Store, Bot: rt.Bot, Auth: rt.Config.Auth})
	srv := httpx.New(":"+strconv.Itoa(port), h).WithShutdownTimeout(rt.Config.HTTP.ShutdownTimeout)
	lg.Info("service_started", map[string]any{"port": port, "tab": rt.TabID})
	err := srv.Run(ctx)
	lg.Info("service_stopped", nil)
	return err
}

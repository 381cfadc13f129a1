package handlers

import (
	"context"
	"net/http"

	"campus-crave/internal/common/httpx"
	"campus-crave/internal/domain"
	"campus-crave/internal/microservices/kitchen/service"
)

type KitchenHandler struct {
	service service.KitchenServiceInterface
}

func NewKitchenHandler(s service.KitchenServiceInterface) *KitchenHandler {
	return &KitchenHandler{service: s}
}

func (h *KitchenHandler) Routes(mux *http.ServeMux, tokens httpx.TokenParser) {
	kitchen := httpx.Authenticate(tokens, domain.RoleKitchen)
	mux.Handle("GET /api/v1/kitchen/board", kitchen(http.HandlerFunc(h.Board)))
	mux.Handle("POST /api/v1/kitchen/orders/{id}/start", kitchen(h.transition(h.service.StartCooking)))
	mux.Handle("POST /api/v1/kitchen/orders/{id}/ready", kitchen(h.transition(h.service.MarkReady)))
}

func (h *KitchenHandler) Board(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.Board())
}

type action func(ctx context.Context, actor domain.User, id string) (domain.Order, error)

func (h *KitchenHandler) transition(do action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := httpx.UserFromContext(r.Context())
		id, err := httpx.PathID(r, "id")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		o, err := do(r.Context(), user, id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, o)
	}
}

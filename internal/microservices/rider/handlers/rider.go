package handlers

import (
	"context"
	"net/http"

	"campus-crave/internal/common/httpx"
	"campus-crave/internal/domain"
	"campus-crave/internal/microservices/rider/service"
)

type RiderHandler struct {
	service service.RiderServiceInterface
}

func NewRiderHandler(svc service.RiderServiceInterface) *RiderHandler {
	return &RiderHandler{service: svc}
}

func (h *RiderHandler) Routes(mux *http.ServeMux, tokens httpx.TokenParser) {
	rider := httpx.Authenticate(tokens, domain.RoleRider)
	mux.Handle("GET /api/v1/rider/board", rider(http.HandlerFunc(h.Board)))
	mux.Handle("POST /api/v1/rider/orders/{id}/accept", rider(h.transition(h.service.AcceptJob)))
	mux.Handle("POST /api/v1/rider/orders/{id}/complete", rider(h.transition(h.service.CompleteDelivery)))
	mux.Handle("GET /api/v1/rider/route", rider(http.HandlerFunc(h.Route)))
}

func (h *RiderHandler) Board(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.Board())
}

func (h *RiderHandler) Route(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.OptimizeRoute(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *RiderHandler) transition(do func(context.Context, domain.User, string) (domain.Order, error)) http.HandlerFunc {
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

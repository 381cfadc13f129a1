package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"campus-crave/internal/common/httpx"
	"campus-crave/internal/domain"
	dto "campus-crave/internal/microservices/admin/domain/dto"
	"campus-crave/internal/microservices/admin/service"
)

type AdminHandler struct {
	service service.AdminServiceInterface
}

func NewAdminHandler(s service.AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: s}
}

func (h *AdminHandler) Routes(mux *http.ServeMux, tokens httpx.TokenParser) {
	admin := httpx.Authenticate(tokens, domain.RoleAdmin)
	mux.Handle("GET /api/v1/admin/stats", admin(http.HandlerFunc(h.Stats)))
	mux.Handle("GET /api/v1/admin/orders", admin(http.HandlerFunc(h.Orders)))
	mux.Handle("POST /api/v1/admin/revenue/reset", admin(http.HandlerFunc(h.ResetRevenue)))
	mux.Handle("GET /api/v1/admin/users", admin(http.HandlerFunc(h.Users)))
	mux.Handle("POST /api/v1/admin/menu", admin(http.HandlerFunc(h.AddMenuItem)))
	mux.Handle("DELETE /api/v1/admin/menu/{id}", admin(http.HandlerFunc(h.DeleteMenuItem)))
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.Stats())
}

func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	orders, err := h.service.Orders(day)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if day == "" {
		day = service.DayToday
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"day": day, "orders": orders})
}

func (h *AdminHandler) ResetRevenue(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetRevenue(r.Context()); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": h.service.Users()})
}

func (h *AdminHandler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddMenuItemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	item, err := h.service.AddMenuItem(r.Context(), req.Name, req.Price, req.Category, req.Image)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}

func (h *AdminHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, fmt.Errorf("%w: menu item id must be a number", domain.ErrInvalid))
		return
	}
	if err := h.service.DeleteMenuItem(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

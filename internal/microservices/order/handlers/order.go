package handlers

import (
	"net/http"

	"campus-crave/internal/common/httpx"
	"campus-crave/internal/domain"
	dto "campus-crave/internal/microservices/order/domain/dto"
	"campus-crave/internal/microservices/order/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
}

func NewOrderHandler(s service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

// Routes mounts the menu publicly and the student endpoints behind auth.
func (oh *OrderHandler) Routes(mux *http.ServeMux, tokens httpx.TokenParser) {
	student := httpx.Authenticate(tokens, domain.RoleStudent)

	mux.HandleFunc("GET /api/v1/menu", oh.Menu)
	mux.Handle("POST /api/v1/orders", student(http.HandlerFunc(oh.Checkout)))
	mux.Handle("GET /api/v1/orders/mine", student(http.HandlerFunc(oh.MyOrders)))
	mux.Handle("POST /api/v1/orders/{id}/cancel", student(http.HandlerFunc(oh.Cancel)))
	mux.Handle("POST /api/v1/orders/{id}/modify", student(http.HandlerFunc(oh.Modify)))
	mux.Handle("POST /api/v1/orders/{id}/review", student(http.HandlerFunc(oh.Review)))
}

func (oh *OrderHandler) Menu(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"categories": oh.service.Menu()})
}

func (oh *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, _ := httpx.UserFromContext(r.Context())
	var req dto.CheckoutRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	items, err := oh.service.Resolve(req.Items)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	order, err := oh.service.Checkout(r.Context(), user, items, req.Location, req.Phone)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}

func (oh *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	user, _ := httpx.UserFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": oh.service.MyOrders(user)})
}

func (oh *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, _ := httpx.UserFromContext(r.Context())
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	order, err := oh.service.Cancel(r.Context(), user, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (oh *OrderHandler) Modify(w http.ResponseWriter, r *http.Request) {
	user, _ := httpx.UserFromContext(r.Context())
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	items, err := oh.service.Modify(r.Context(), user, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.ModifyResponse{Items: items, Total: domain.LineTotal(items)})
}

func (oh *OrderHandler) Review(w http.ResponseWriter, r *http.Request) {
	user, _ := httpx.UserFromContext(r.Context())
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.ReviewRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	review, err := oh.service.SubmitReview(r.Context(), user, id, req.Stars, req.Text)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, review)
}

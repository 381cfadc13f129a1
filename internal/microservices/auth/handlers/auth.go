package handlers

import (
	"net/http"

	"campus-crave/internal/common/httpx"
	"campus-crave/internal/domain"
	"campus-crave/internal/microservices/auth/domain/dto"
	"campus-crave/internal/microservices/auth/service"
)

type AuthHandler struct {
	service service.AuthServiceInterface
}

func NewAuthHandler(s service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/signup", h.Signup)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	sess, err := h.service.Login(r.Context(), req.Email, req.Password, role)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(sess))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	sess, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResponse(sess))
}

func toResponse(s service.Session) dto.SessionResponse {
	return dto.SessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt.Unix(), User: s.User}
}

package handlers

import (
	"net/http"

	"campus-crave/internal/common/httpx"
	"campus-crave/internal/microservices/bot/service"
)

type AskRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type BotHandler struct {
	service service.BotServiceInterface
}

func NewBotHandler(s service.BotServiceInterface) *BotHandler {
	return &BotHandler{service: s}
}

func (h *BotHandler) Routes(mux *http.ServeMux, tokens httpx.TokenParser) {
	mux.Handle("POST /api/v1/bot/ask", httpx.Authenticate(tokens)(http.HandlerFunc(h.Ask)))
}

func (h *BotHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	answer, err := h.service.Ask(r.Context(), req.Prompt)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

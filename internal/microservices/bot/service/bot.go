package service

import (
	"context"
	"fmt"
	"strings"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
	"campus-crave/internal/responder"
)

var ErrEmptyPrompt = fmt.Errorf("%w: ask CraveBot something first", domain.ErrInvalid)

type BotServiceInterface interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

type BotService struct {
	responder responder.Responder
	lg        *logger.Logger
}

func NewBotService(r responder.Responder) BotServiceInterface {
	return &BotService{responder: r, lg: logger.New("bot-service")}
}

func (s *BotService) Ask(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	answer, err := s.responder.Respond(ctx, prompt, nil)
	if err != nil {
		return "", err
	}
	s.lg.Debug("bot_answered", map[string]any{"prompt_len": len(prompt)})
	return answer, nil
}

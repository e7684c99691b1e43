package chat

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatrelay/internal/config"
	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models"
	"chatrelay/internal/domain/repositories"
	"chatrelay/internal/llm"
)

// ChatRequest is the inbound chat operation payload.
// SessionID takes precedence over UserID as the supplied identity.
type ChatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the chat operation result.
type ChatResponse struct {
	Reply         string `json:"reply"`
	SessionID     string `json:"session_id"`
	HistoryLength int    `json:"history_length"`
	ReplyLength   int    `json:"reply_length"`
	Status        string `json:"status"`
}

// Service orchestrates one chat exchange: resolve identity, assemble
// context, persist the user turn, call the provider gateway, persist the
// assistant turn. No state spans requests.
type Service struct {
	messages     repositories.MessageRepository
	resolver     *IdentityResolver
	assembler    *ContextAssembler
	provider     llm.Provider
	historyTurns int
	logger       *slog.Logger
}

// NewService creates a new chat service
func NewService(
	messages repositories.MessageRepository,
	resolver *IdentityResolver,
	provider llm.Provider,
	historyTurns int,
	logger *slog.Logger,
) *Service {
	return &Service{
		messages:     messages,
		resolver:     resolver,
		assembler:    NewContextAssembler(messages),
		provider:     provider,
		historyTurns: historyTurns,
		logger:       logger,
	}
}

// HandleChat runs one chat exchange. The provider call never fails the
// request: upstream problems come back as a renderable reply and are
// persisted like any other assistant turn. Only validation and persistence
// errors propagate.
func (s *Service) HandleChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := s.validateChatRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	supplied := req.SessionID
	if supplied == "" {
		supplied = req.UserID
	}
	sessionID := s.resolver.Resolve(supplied)
	if sessionID != supplied {
		s.logger.Info("new session created", "session_id", sessionID)
	}

	window, historyLen, err := s.assembler.Build(ctx, sessionID, req.Message, s.historyTurns)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("context assembled",
		"session_id", sessionID,
		"history_messages", historyLen,
		"window_size", len(window),
	)

	userMsg := &models.Message{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   req.Message,
	}
	if err := s.messages.Append(ctx, userMsg); err != nil {
		return nil, err
	}

	result := s.provider.Chat(ctx, window, 0)
	if result.Degraded {
		s.logger.Warn("provider reply degraded",
			"provider", s.provider.Name(),
			"category", result.Category,
			"detail", result.Detail,
			"session_id", sessionID,
		)
	}

	assistantMsg := &models.Message{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   result.Text,
	}
	if err := s.messages.Append(ctx, assistantMsg); err != nil {
		return nil, err
	}

	s.logger.Info("chat exchange completed",
		"session_id", sessionID,
		"provider", s.provider.Name(),
		"reply_length", utf8.RuneCountInString(result.Text),
	)

	return &ChatResponse{
		Reply:         result.Text,
		SessionID:     sessionID,
		HistoryLength: historyLen + 2,
		ReplyLength:   utf8.RuneCountInString(result.Text),
		Status:        "success",
	}, nil
}

func (s *Service) validateChatRequest(req *ChatRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Message,
			validation.Required,
			validation.Length(1, config.MaxMessageLength),
		),
	)
}

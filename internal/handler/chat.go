package handler

import (
	"log/slog"
	"net/http"

	"chatrelay/internal/httputil"
	"chatrelay/internal/service/chat"
)

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	chatService *chat.Service
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *chat.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat runs one chat exchange
// POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.chatService.HandleChat(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"chatrelay/internal/httputil"
	"chatrelay/internal/service/session"
)

// SessionHandler handles session management HTTP requests
type SessionHandler struct {
	directory *session.Directory
	admin     *session.AdminService
	logger    *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(directory *session.Directory, admin *session.AdminService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		directory: directory,
		admin:     admin,
		logger:    logger,
	}
}

// ListSessions returns one page of session overviews
// GET /api/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &session.ListRequest{
		Page:     queryInt(q.Get("page")),
		PageSize: queryInt(q.Get("page_size")),
		SortBy:   q.Get("sort_by"),
		Order:    q.Get("order"),
	}

	result, err := h.directory.List(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// SessionStats returns store-wide statistics
// GET /api/sessions/stats
func (h *SessionHandler) SessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.directory.Stats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}

// SessionMessages returns a session's messages, oldest first
// GET /api/sessions/{id}/messages
func (h *SessionHandler) SessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "session id is required")
		return
	}

	limit := queryInt(r.URL.Query().Get("limit"))
	messages, err := h.directory.Messages(r.Context(), sessionID, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   messages,
		"count":      len(messages),
	})
}

// SessionSummary returns a session's summary
// GET /api/sessions/{id}/summary
func (h *SessionHandler) SessionSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "session id is required")
		return
	}

	summary, err := h.directory.Summary(r.Context(), sessionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summary)
}

// DeleteSession removes one session
// DELETE /api/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "session id is required")
		return
	}

	deleted, err := h.admin.Delete(r.Context(), sessionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":    sessionID,
		"deleted_count": deleted,
		"status":        "success",
	})
}

// BulkDeleteSessions removes sessions by query-driven action
// DELETE /api/sessions
func (h *SessionHandler) BulkDeleteSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &session.BulkDeleteRequest{
		Action:     q.Get("action"),
		KeepLatest: queryInt(q.Get("keep_latest")),
		SessionIDs: q["session_ids"],
		Confirm:    q.Get("confirm"),
	}

	result, err := h.admin.BulkDelete(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// BatchDeleteSessions removes an explicit list of sessions
// DELETE /api/sessions/batch
func (h *SessionHandler) BatchDeleteSessions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionIDs []string `json:"session_ids"`
		Confirm    string   `json:"confirm_password"`
	}
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.admin.BulkDelete(r.Context(), &session.BulkDeleteRequest{
		Action:     session.ActionSelected,
		SessionIDs: body.SessionIDs,
		Confirm:    body.Confirm,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// queryInt parses a query parameter as int, returning 0 when absent or bad.
// Services apply their own defaults and bounds on zero values.
func queryInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

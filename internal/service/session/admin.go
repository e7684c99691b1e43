package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatrelay/internal/config"
	"chatrelay/internal/domain"
	"chatrelay/internal/domain/repositories"
)

// Bulk delete actions.
const (
	ActionAll        = "all"
	ActionKeepLatest = "keep_latest"
	ActionSelected   = "selected"
)

// BulkDeleteRequest describes one destructive session operation.
// Confirm must match the configured confirmation token; the guard runs
// before any mutation, so a mismatch deletes nothing.
type BulkDeleteRequest struct {
	Action     string   `json:"action"`
	KeepLatest int      `json:"keep_latest"`
	SessionIDs []string `json:"session_ids"`
	Confirm    string   `json:"confirm_password"`
}

// BulkDeleteResult reports what a bulk delete removed.
type BulkDeleteResult struct {
	Action       string   `json:"action"`
	DeletedCount int64    `json:"deleted_count"`
	KeptSessions []string `json:"kept_sessions,omitempty"`
	Message      string   `json:"message"`
}

// AdminService owns the destructive session operations: single delete,
// guarded bulk delete, and the maintenance paths (placeholder purge,
// timestamp backfill). Every call is all-or-nothing.
type AdminService struct {
	messages     repositories.MessageRepository
	confirmToken string
	placeholders []string
	logger       *slog.Logger
}

// NewAdminService creates a new session admin service
func NewAdminService(
	messages repositories.MessageRepository,
	confirmToken string,
	placeholders []string,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		messages:     messages,
		confirmToken: confirmToken,
		placeholders: placeholders,
		logger:       logger,
	}
}

// Delete removes one session and returns the number of deleted messages.
func (s *AdminService) Delete(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("%w: session id is required", domain.ErrValidation)
	}

	deleted, err := s.messages.DeleteSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("session deleted", "session_id", sessionID, "deleted_count", deleted)
	return deleted, nil
}

// BulkDelete removes sessions according to the requested action.
func (s *AdminService) BulkDelete(ctx context.Context, req *BulkDeleteRequest) (*BulkDeleteResult, error) {
	if err := s.validateBulkDeleteRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	switch req.Action {
	case ActionAll:
		deleted, err := s.messages.DeleteAll(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Warn("all sessions deleted", "deleted_count", deleted)
		return &BulkDeleteResult{
			Action:       ActionAll,
			DeletedCount: deleted,
			Message:      fmt.Sprintf("deleted all sessions (%d messages)", deleted),
		}, nil

	case ActionKeepLatest:
		keep, err := s.latestSessionIDs(ctx, req.KeepLatest)
		if err != nil {
			return nil, err
		}
		deleted, err := s.messages.DeleteAllExcept(ctx, keep)
		if err != nil {
			return nil, err
		}
		s.logger.Warn("old sessions deleted",
			"kept_sessions", len(keep),
			"deleted_count", deleted,
		)
		return &BulkDeleteResult{
			Action:       ActionKeepLatest,
			DeletedCount: deleted,
			KeptSessions: keep,
			Message:      fmt.Sprintf("kept %d most recent sessions, deleted %d messages", len(keep), deleted),
		}, nil

	default: // ActionSelected, enforced by validation
		deleted, err := s.messages.DeleteSessions(ctx, req.SessionIDs)
		if err != nil {
			return nil, err
		}
		s.logger.Warn("selected sessions deleted",
			"sessions", len(req.SessionIDs),
			"deleted_count", deleted,
		)
		return &BulkDeleteResult{
			Action:       ActionSelected,
			DeletedCount: deleted,
			Message:      fmt.Sprintf("deleted %d sessions (%d messages)", len(req.SessionIDs), deleted),
		}, nil
	}
}

// PurgePlaceholders removes the reserved placeholder buckets
// (test/default_user traffic that never got a real session id).
func (s *AdminService) PurgePlaceholders(ctx context.Context) (int64, error) {
	deleted, err := s.messages.DeleteSessions(ctx, s.placeholders)
	if err != nil {
		return 0, err
	}

	s.logger.Info("placeholder sessions purged",
		"placeholders", s.placeholders,
		"deleted_count", deleted,
	)
	return deleted, nil
}

// BackfillTimestamps repairs messages with a missing creation timestamp.
func (s *AdminService) BackfillTimestamps(ctx context.Context) (int64, error) {
	fixed, err := s.messages.BackfillTimestamps(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	s.logger.Info("timestamps backfilled", "fixed_count", fixed)
	return fixed, nil
}

// latestSessionIDs returns the n most recently active session ids.
func (s *AdminService) latestSessionIDs(ctx context.Context, n int) ([]string, error) {
	overviews, err := s.messages.SessionOverviews(ctx)
	if err != nil {
		return nil, err
	}

	sortOverviews(overviews, SortByLastActivity, OrderDesc)
	if len(overviews) > n {
		overviews = overviews[:n]
	}

	ids := make([]string, len(overviews))
	for i, o := range overviews {
		ids[i] = o.SessionID
	}
	return ids, nil
}

func (s *AdminService) validateBulkDeleteRequest(req *BulkDeleteRequest) error {
	if req.Confirm != s.confirmToken {
		return fmt.Errorf("confirmation token mismatch")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Action,
			validation.Required,
			validation.In(ActionAll, ActionKeepLatest, ActionSelected),
		),
		validation.Field(&req.KeepLatest,
			validation.When(req.Action == ActionKeepLatest,
				validation.Required,
				validation.Min(1),
				validation.Max(config.MaxKeepLatest),
			),
		),
		validation.Field(&req.SessionIDs,
			validation.When(req.Action == ActionSelected,
				validation.Required,
				validation.Length(1, 0),
			),
		),
	)
}

package repositories

import (
	"context"
	"time"

	"chatrelay/internal/domain/models"
)

// MessageRepository is the append-only store of conversation turns.
// Append is atomic per call; there is no cross-call serialization, so two
// concurrent requests on one session may each miss the other's write when
// reading history. That is acceptable for this domain.
type MessageRepository interface {
	// Append persists a message and fills in ID and CreatedAt.
	Append(ctx context.Context, msg *models.Message) error

	// ListBySession returns up to limit messages for a session, oldest
	// first. When the session holds more than limit messages, the oldest
	// are dropped. limit <= 0 means no cap.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Message, error)

	// CountBySession returns the number of messages in a session.
	CountBySession(ctx context.Context, sessionID string) (int, error)

	// FirstBySession returns the oldest message in a session, or
	// domain.ErrNotFound when the session is empty.
	FirstBySession(ctx context.Context, sessionID string) (*models.Message, error)

	// LastBySession returns the newest message in a session, or
	// domain.ErrNotFound when the session is empty.
	LastBySession(ctx context.Context, sessionID string) (*models.Message, error)

	// FirstUserBySession returns the oldest user-role message in a
	// session, or domain.ErrNotFound when none exists.
	FirstUserBySession(ctx context.Context, sessionID string) (*models.Message, error)

	// SessionOverviews returns one rollup per session (count, last
	// activity, last message content), unsorted.
	SessionOverviews(ctx context.Context) ([]models.SessionOverview, error)

	// DistinctSessionIDs returns all session identities present in the store.
	DistinctSessionIDs(ctx context.Context) ([]string, error)

	// Count returns the total number of stored messages.
	Count(ctx context.Context) (int, error)

	// CountSince returns the number of messages created at or after t.
	CountSince(ctx context.Context, t time.Time) (int, error)

	// RoleCounts returns message counts grouped by role.
	RoleCounts(ctx context.Context) (map[string]int, error)

	// DeleteSession removes all messages of one session, returning the
	// number of deleted rows.
	DeleteSession(ctx context.Context, sessionID string) (int64, error)

	// DeleteSessions removes all messages of the given sessions.
	DeleteSessions(ctx context.Context, sessionIDs []string) (int64, error)

	// DeleteAll removes every message in the store.
	DeleteAll(ctx context.Context) (int64, error)

	// DeleteAllExcept removes all messages outside the kept sessions.
	DeleteAllExcept(ctx context.Context, keep []string) (int64, error)

	// BackfillTimestamps repairs rows with a missing created_at by
	// setting them to now. Maintenance path only.
	BackfillTimestamps(ctx context.Context, now time.Time) (int64, error)
}

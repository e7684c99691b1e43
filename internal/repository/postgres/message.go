package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models"
	"chatrelay/internal/domain/repositories"
)

// PostgresMessageRepository implements the MessageRepository interface
// using PostgreSQL
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewMessageRepository creates a new PostgresMessageRepository
func NewMessageRepository(config *RepositoryConfig) repositories.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

// Append persists a message. The timestamp is server-assigned so ordering
// within a session is monotonically non-decreasing.
func (r *PostgresMessageRepository) Append(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO chat_messages (session_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, msg.SessionID, msg.Role, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	return nil
}

// scanner defines the interface for row scanning (implemented by both
// pgx.Row and pgx.Rows)
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanMessageRow scans a database row into a Message struct.
// created_at may be NULL on legacy rows; those scan as the zero time until
// the backfill maintenance path repairs them.
func scanMessageRow(row scanner) (*models.Message, error) {
	var msg models.Message
	var createdAt *time.Time
	err := row.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &createdAt)
	if err != nil {
		return nil, err
	}
	if createdAt != nil {
		msg.CreatedAt = *createdAt
	}
	return &msg, nil
}

// ListBySession retrieves a session's messages ordered oldest first.
// limit > 0 keeps only the most recent limit messages; older ones are
// dropped. limit <= 0 means no cap.
func (r *PostgresMessageRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`
	args := []interface{}{sessionID}
	if limit > 0 {
		// Take the newest rows, then flip back to chronological order.
		query = `
			SELECT id, session_id, role, content, created_at
			FROM (
				SELECT id, session_id, role, content, created_at
				FROM chat_messages
				WHERE session_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2
			) recent
			ORDER BY created_at ASC, id ASC
		`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Return empty slice if no messages found
	if messages == nil {
		messages = []models.Message{}
	}

	return messages, nil
}

// CountBySession returns the number of messages in a session.
func (r *PostgresMessageRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	query := `SELECT COUNT(*) FROM chat_messages WHERE session_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count session messages: %w", err)
	}

	return count, nil
}

// FirstBySession returns the oldest message in a session.
func (r *PostgresMessageRepository) FirstBySession(ctx context.Context, sessionID string) (*models.Message, error) {
	return r.boundaryMessage(ctx, sessionID, "ASC", "")
}

// LastBySession returns the newest message in a session.
func (r *PostgresMessageRepository) LastBySession(ctx context.Context, sessionID string) (*models.Message, error) {
	return r.boundaryMessage(ctx, sessionID, "DESC", "")
}

// FirstUserBySession returns the oldest user-role message in a session.
func (r *PostgresMessageRepository) FirstUserBySession(ctx context.Context, sessionID string) (*models.Message, error) {
	return r.boundaryMessage(ctx, sessionID, "ASC", models.RoleUser)
}

// boundaryMessage fetches the first or last message of a session,
// optionally filtered by role. direction is a trusted constant.
func (r *PostgresMessageRepository) boundaryMessage(ctx context.Context, sessionID, direction, role string) (*models.Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
	`
	args := []interface{}{sessionID}
	if role != "" {
		query += ` AND role = $2`
		args = append(args, role)
	}
	query += fmt.Sprintf(` ORDER BY created_at %s, id %s LIMIT 1`, direction, direction)

	msg, err := scanMessageRow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get boundary message: %w", err)
	}

	return msg, nil
}

// SessionOverviews returns one rollup per session: message count, last
// activity and the content of the most recent message. Single pass over
// the table via window functions.
func (r *PostgresMessageRepository) SessionOverviews(ctx context.Context) ([]models.SessionOverview, error) {
	query := `
		SELECT DISTINCT ON (session_id)
			session_id,
			content,
			MAX(created_at) OVER (PARTITION BY session_id) AS last_activity,
			COUNT(*) OVER (PARTITION BY session_id) AS message_count
		FROM chat_messages
		ORDER BY session_id, created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("session overviews: %w", err)
	}
	defer rows.Close()

	var overviews []models.SessionOverview
	for rows.Next() {
		var o models.SessionOverview
		var lastActivity *time.Time
		if err := rows.Scan(&o.SessionID, &o.LastMessage, &lastActivity, &o.MessageCount); err != nil {
			return nil, fmt.Errorf("scan session overview: %w", err)
		}
		if lastActivity != nil {
			o.LastActivity = *lastActivity
		}
		overviews = append(overviews, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session overviews: %w", err)
	}

	if overviews == nil {
		overviews = []models.SessionOverview{}
	}

	return overviews, nil
}

// DistinctSessionIDs returns all session identities present in the store.
func (r *PostgresMessageRepository) DistinctSessionIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT session_id FROM chat_messages`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct session ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session ids: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}

// Count returns the total number of stored messages.
func (r *PostgresMessageRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_messages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// CountSince returns the number of messages created at or after t.
func (r *PostgresMessageRepository) CountSince(ctx context.Context, t time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM chat_messages WHERE created_at >= $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, t).Scan(&count); err != nil {
		return 0, fmt.Errorf("count messages since: %w", err)
	}

	return count, nil
}

// RoleCounts returns message counts grouped by role.
func (r *PostgresMessageRepository) RoleCounts(ctx context.Context) (map[string]int, error) {
	query := `SELECT role, COUNT(*) FROM chat_messages GROUP BY role`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("role counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		counts[role] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role counts: %w", err)
	}

	return counts, nil
}

// DeleteSession removes all messages of one session.
func (r *PostgresMessageRepository) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete session: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteSessions removes all messages of the given sessions.
func (r *PostgresMessageRepository) DeleteSessions(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE session_id = ANY($1)`, sessionIDs)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteAll removes every message in the store.
func (r *PostgresMessageRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM chat_messages`)
	if err != nil {
		return 0, fmt.Errorf("delete all messages: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteAllExcept removes all messages outside the kept sessions.
func (r *PostgresMessageRepository) DeleteAllExcept(ctx context.Context, keep []string) (int64, error) {
	if len(keep) == 0 {
		return r.DeleteAll(ctx)
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE NOT (session_id = ANY($1))`, keep)
	if err != nil {
		return 0, fmt.Errorf("delete all except: %w", err)
	}

	return result.RowsAffected(), nil
}

// BackfillTimestamps repairs rows with a missing created_at.
func (r *PostgresMessageRepository) BackfillTimestamps(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `UPDATE chat_messages SET created_at = $1 WHERE created_at IS NULL`, now)
	if err != nil {
		return 0, fmt.Errorf("backfill timestamps: %w", err)
	}

	return result.RowsAffected(), nil
}

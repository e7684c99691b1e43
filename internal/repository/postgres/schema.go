package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the chat_messages table and its session index if
// they do not exist yet. Safe to call on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id          BIGSERIAL PRIMARY KEY,
			session_id  VARCHAR(255) NOT NULL,
			role        VARCHAR(50) NOT NULL,
			content     TEXT NOT NULL,
			created_at  TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id
			ON chat_messages (session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_created_at
			ON chat_messages (created_at)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

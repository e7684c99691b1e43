// Package memory provides an in-memory MessageRepository. It backs the
// server when no DATABASE_URL is configured and the service-level tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models"
	"chatrelay/internal/domain/repositories"
)

// MessageRepository is a mutex-guarded in-memory message store.
type MessageRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  []models.Message
}

// NewMessageRepository creates an empty in-memory store.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{nextID: 1}
}

var _ repositories.MessageRepository = (*MessageRepository)(nil)

// Append persists a message, assigning ID and CreatedAt.
func (r *MessageRepository) Append(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = r.nextID
	r.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.items = append(r.items, *msg)

	return nil
}

// sessionMessages returns a session's messages ordered oldest first.
// Callers must hold at least a read lock.
func (r *MessageRepository) sessionMessages(sessionID string) []models.Message {
	var out []models.Message
	for _, m := range r.items {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ListBySession returns up to limit messages for a session, oldest first.
// When the session holds more than limit messages, the oldest are dropped.
func (r *MessageRepository) ListBySession(_ context.Context, sessionID string, limit int) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.sessionMessages(sessionID)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// CountBySession returns the number of messages in a session.
func (r *MessageRepository) CountBySession(_ context.Context, sessionID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessionMessages(sessionID)), nil
}

// FirstBySession returns the oldest message in a session.
func (r *MessageRepository) FirstBySession(_ context.Context, sessionID string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.sessionMessages(sessionID)
	if len(msgs) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	first := msgs[0]
	return &first, nil
}

// LastBySession returns the newest message in a session.
func (r *MessageRepository) LastBySession(_ context.Context, sessionID string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.sessionMessages(sessionID)
	if len(msgs) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	last := msgs[len(msgs)-1]
	return &last, nil
}

// FirstUserBySession returns the oldest user-role message in a session.
func (r *MessageRepository) FirstUserBySession(_ context.Context, sessionID string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.sessionMessages(sessionID) {
		if m.Role == models.RoleUser {
			msg := m
			return &msg, nil
		}
	}
	return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
}

// SessionOverviews returns one rollup per session.
func (r *MessageRepository) SessionOverviews(_ context.Context) ([]models.SessionOverview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byID := make(map[string]*models.SessionOverview)
	for _, id := range r.distinctIDs() {
		msgs := r.sessionMessages(id)
		last := msgs[len(msgs)-1]
		byID[id] = &models.SessionOverview{
			SessionID:    id,
			LastMessage:  last.Content,
			LastActivity: last.CreatedAt,
			MessageCount: len(msgs),
		}
	}

	overviews := make([]models.SessionOverview, 0, len(byID))
	for _, o := range byID {
		overviews = append(overviews, *o)
	}
	return overviews, nil
}

// distinctIDs returns session ids in first-seen order. Callers must hold
// at least a read lock.
func (r *MessageRepository) distinctIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range r.items {
		if !seen[m.SessionID] {
			seen[m.SessionID] = true
			ids = append(ids, m.SessionID)
		}
	}
	return ids
}

// DistinctSessionIDs returns all session identities present in the store.
func (r *MessageRepository) DistinctSessionIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.distinctIDs()
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Count returns the total number of stored messages.
func (r *MessageRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

// CountSince returns the number of messages created at or after t.
func (r *MessageRepository) CountSince(_ context.Context, t time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, m := range r.items {
		if !m.CreatedAt.Before(t) {
			count++
		}
	}
	return count, nil
}

// RoleCounts returns message counts grouped by role.
func (r *MessageRepository) RoleCounts(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, m := range r.items {
		counts[m.Role]++
	}
	return counts, nil
}

// DeleteSession removes all messages of one session.
func (r *MessageRepository) DeleteSession(_ context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteWhere(func(m models.Message) bool {
		return m.SessionID == sessionID
	}), nil
}

// DeleteSessions removes all messages of the given sessions.
func (r *MessageRepository) DeleteSessions(_ context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}

	targets := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		targets[id] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteWhere(func(m models.Message) bool {
		return targets[m.SessionID]
	}), nil
}

// DeleteAll removes every message in the store.
func (r *MessageRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteWhere(func(models.Message) bool { return true }), nil
}

// DeleteAllExcept removes all messages outside the kept sessions.
func (r *MessageRepository) DeleteAllExcept(_ context.Context, keep []string) (int64, error) {
	kept := make(map[string]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteWhere(func(m models.Message) bool {
		return !kept[m.SessionID]
	}), nil
}

// deleteWhere removes matching messages and returns the count.
// Callers must hold the write lock.
func (r *MessageRepository) deleteWhere(match func(models.Message) bool) int64 {
	var remaining []models.Message
	var deleted int64
	for _, m := range r.items {
		if match(m) {
			deleted++
			continue
		}
		remaining = append(remaining, m)
	}
	r.items = remaining
	return deleted
}

// BackfillTimestamps repairs messages with a zero CreatedAt.
func (r *MessageRepository) BackfillTimestamps(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var fixed int64
	for i := range r.items {
		if r.items[i].CreatedAt.IsZero() {
			r.items[i].CreatedAt = now
			fixed++
		}
	}
	return fixed, nil
}

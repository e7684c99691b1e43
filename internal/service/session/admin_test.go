package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatrelay/internal/domain"
	"chatrelay/internal/repository/memory"
)

func newTestAdmin(repo *memory.MessageRepository) *AdminService {
	return NewAdminService(repo, "CONFIRM_DELETE", []string{"default_user", "test"}, testLogger())
}

func TestDeleteSingleSession(t *testing.T) {
	repo := memory.NewMessageRepository()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	seedSession(t, repo, "s1", 2, base)
	seedSession(t, repo, "s2", 1, base)

	admin := newTestAdmin(repo)
	deleted, err := admin.Delete(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4", deleted)
	}

	count, _ := repo.Count(context.Background())
	if count != 2 {
		t.Errorf("remaining messages = %d, want 2 (s2 untouched)", count)
	}
}

func TestDeleteRequiresSessionID(t *testing.T) {
	admin := newTestAdmin(memory.NewMessageRepository())
	_, err := admin.Delete(context.Background(), "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Delete(\"\") error = %v, want ErrValidation", err)
	}
}

func TestBulkDeleteConfirmMismatchDeletesNothing(t *testing.T) {
	repo := memory.NewMessageRepository()
	seedSession(t, repo, "s1", 2, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))

	admin := newTestAdmin(repo)
	_, err := admin.BulkDelete(context.Background(), &BulkDeleteRequest{
		Action:  ActionAll,
		Confirm: "yes please",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("BulkDelete() error = %v, want ErrValidation", err)
	}

	count, _ := repo.Count(context.Background())
	if count != 4 {
		t.Errorf("remaining messages = %d, want 4 (nothing deleted)", count)
	}
}

func TestBulkDeleteAll(t *testing.T) {
	repo := memory.NewMessageRepository()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	seedSession(t, repo, "s1", 2, base)
	seedSession(t, repo, "s2", 1, base)

	admin := newTestAdmin(repo)
	result, err := admin.BulkDelete(context.Background(), &BulkDeleteRequest{
		Action:  ActionAll,
		Confirm: "CONFIRM_DELETE",
	})
	if err != nil {
		t.Fatalf("BulkDelete() error: %v", err)
	}
	if result.DeletedCount != 6 {
		t.Errorf("DeletedCount = %d, want 6", result.DeletedCount)
	}

	count, _ := repo.Count(context.Background())
	if count != 0 {
		t.Errorf("remaining messages = %d, want 0", count)
	}
}

func TestBulkDeleteKeepLatest(t *testing.T) {
	repo := memory.NewMessageRepository()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	// Distinct last-activity times; s5 and s4 are the most recent
	for i, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		seedSession(t, repo, id, 1, base.Add(time.Duration(i)*time.Hour))
	}

	admin := newTestAdmin(repo)
	result, err := admin.BulkDelete(context.Background(), &BulkDeleteRequest{
		Action:     ActionKeepLatest,
		KeepLatest: 2,
		Confirm:    "CONFIRM_DELETE",
	})
	if err != nil {
		t.Fatalf("BulkDelete() error: %v", err)
	}
	if result.DeletedCount != 6 {
		t.Errorf("DeletedCount = %d, want 6 (3 sessions of 2 messages)", result.DeletedCount)
	}
	if len(result.KeptSessions) != 2 {
		t.Fatalf("KeptSessions = %v, want 2 entries", result.KeptSessions)
	}

	kept := map[string]bool{result.KeptSessions[0]: true, result.KeptSessions[1]: true}
	if !kept["s5"] || !kept["s4"] {
		t.Errorf("KeptSessions = %v, want s5 and s4", result.KeptSessions)
	}

	ids, _ := repo.DistinctSessionIDs(context.Background())
	if len(ids) != 2 {
		t.Errorf("remaining sessions = %v, want exactly the kept two", ids)
	}
}

func TestBulkDeleteKeepLatestBounds(t *testing.T) {
	admin := newTestAdmin(memory.NewMessageRepository())

	for _, keep := range []int{0, -1, 51} {
		_, err := admin.BulkDelete(context.Background(), &BulkDeleteRequest{
			Action:     ActionKeepLatest,
			KeepLatest: keep,
			Confirm:    "CONFIRM_DELETE",
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("keep_latest=%d: error = %v, want ErrValidation", keep, err)
		}
	}
}

func TestBulkDeleteSelected(t *testing.T) {
	repo := memory.NewMessageRepository()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	seedSession(t, repo, "s1", 1, base)
	seedSession(t, repo, "s2", 1, base)
	seedSession(t, repo, "s3", 1, base)

	admin := newTestAdmin(repo)
	result, err := admin.BulkDelete(context.Background(), &BulkDeleteRequest{
		Action:     ActionSelected,
		SessionIDs: []string{"s1", "s3", "not-there"},
		Confirm:    "CONFIRM_DELETE",
	})
	if err != nil {
		t.Fatalf("BulkDelete() error: %v", err)
	}
	if result.DeletedCount != 4 {
		t.Errorf("DeletedCount = %d, want 4", result.DeletedCount)
	}

	ids, _ := repo.DistinctSessionIDs(context.Background())
	if len(ids) != 1 || ids[0] != "s2" {
		t.Errorf("remaining sessions = %v, want [s2]", ids)
	}
}

func TestBulkDeleteSelectedRequiresIDs(t *testing.T) {
	admin := newTestAdmin(memory.NewMessageRepository())

	_, err := admin.BulkDelete(context.Background(), &BulkDeleteRequest{
		Action:  ActionSelected,
		Confirm: "CONFIRM_DELETE",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("BulkDelete() error = %v, want ErrValidation", err)
	}
}

func TestBulkDeleteUnknownAction(t *testing.T) {
	admin := newTestAdmin(memory.NewMessageRepository())

	_, err := admin.BulkDelete(context.Background(), &BulkDeleteRequest{
		Action:  "truncate",
		Confirm: "CONFIRM_DELETE",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("BulkDelete() error = %v, want ErrValidation", err)
	}
}

func TestPurgePlaceholders(t *testing.T) {
	repo := memory.NewMessageRepository()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	seedSession(t, repo, "default_user", 1, base)
	seedSession(t, repo, "test", 1, base)
	seedSession(t, repo, "real-session", 1, base)

	admin := newTestAdmin(repo)
	deleted, err := admin.PurgePlaceholders(context.Background())
	if err != nil {
		t.Fatalf("PurgePlaceholders() error: %v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4", deleted)
	}

	ids, _ := repo.DistinctSessionIDs(context.Background())
	if len(ids) != 1 || ids[0] != "real-session" {
		t.Errorf("remaining sessions = %v, want [real-session]", ids)
	}
}

func TestBackfillTimestamps(t *testing.T) {
	repo := memory.NewMessageRepository()
	ctx := context.Background()

	// Append always stamps new rows, so a fresh store has nothing to repair.
	seedSession(t, repo, "s1", 1, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))

	admin := newTestAdmin(repo)
	fixed, err := admin.BackfillTimestamps(ctx)
	if err != nil {
		t.Fatalf("BackfillTimestamps() error: %v", err)
	}
	if fixed != 0 {
		t.Errorf("fixed = %d, want 0 (all rows already stamped)", fixed)
	}
}

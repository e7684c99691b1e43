package chat

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolveKeepsRealIdentity(t *testing.T) {
	r := NewIdentityResolver([]string{"default_user", "test"})

	got := r.Resolve("session-abc-123")
	if got != "session-abc-123" {
		t.Errorf("Resolve() = %q, want identity unchanged", got)
	}

	// Idempotent: resolving the output again changes nothing
	if again := r.Resolve(got); again != got {
		t.Errorf("Resolve(Resolve(x)) = %q, want %q", again, got)
	}
}

func TestResolvePlaceholders(t *testing.T) {
	r := NewIdentityResolver([]string{"default_user", "test"})

	for _, supplied := range []string{"", "default_user", "test"} {
		got := r.Resolve(supplied)
		if got == supplied {
			t.Errorf("Resolve(%q) returned the placeholder itself", supplied)
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("Resolve(%q) = %q, not a valid UUID: %v", supplied, got, err)
		}
	}
}

func TestResolvePlaceholdersAreDistinct(t *testing.T) {
	r := NewIdentityResolver([]string{"default_user"})

	first := r.Resolve("default_user")
	second := r.Resolve("default_user")
	if first == second {
		t.Errorf("two placeholder resolutions produced the same id %q", first)
	}
}

func TestIsPlaceholder(t *testing.T) {
	r := NewIdentityResolver([]string{"default_user", "test"})

	tests := []struct {
		identity string
		want     bool
	}{
		{"default_user", true},
		{"test", true},
		{"", true},
		{"default_user2", false},
		{"b7f8a760-1c30-4f0e-9b6a-000000000000", false},
	}

	for _, tt := range tests {
		if got := r.IsPlaceholder(tt.identity); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.identity, got, tt.want)
		}
	}
}

package chat

import "github.com/google/uuid"

// IdentityResolver decides whether an inbound session identity is a real
// session to continue or an anonymous placeholder that needs a fresh
// unique id. Centralizing the placeholder set here keeps sentinel string
// comparisons out of request handling.
type IdentityResolver struct {
	placeholders map[string]bool
}

// NewIdentityResolver creates a resolver for the given placeholder set.
// The empty identity is always treated as a placeholder.
func NewIdentityResolver(placeholders []string) *IdentityResolver {
	set := make(map[string]bool, len(placeholders)+1)
	set[""] = true
	for _, p := range placeholders {
		set[p] = true
	}
	return &IdentityResolver{placeholders: set}
}

// Resolve returns the effective session identity: a freshly generated UUID
// when the supplied identity is a placeholder, otherwise the supplied
// identity unchanged. Idempotent on non-placeholder input.
func (r *IdentityResolver) Resolve(supplied string) string {
	if r.placeholders[supplied] {
		return uuid.NewString()
	}
	return supplied
}

// IsPlaceholder reports whether an identity belongs to the placeholder set.
func (r *IdentityResolver) IsPlaceholder(identity string) bool {
	return r.placeholders[identity]
}

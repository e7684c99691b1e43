package config

const (
	// DefaultHistoryTurns is the number of conversation turns (user +
	// assistant pairs) kept in the context window sent to the model.
	// The store query fetches DefaultHistoryTurns*2 messages. Truncation
	// is message-count based, not token based; very long messages can
	// still exceed a provider's context limit.
	DefaultHistoryTurns = 3

	// MaxMessageLength is the maximum length for a single chat message.
	// Bounds request size and keeps context windows sane.
	MaxMessageLength = 8000

	// SessionPreviewLength is the truncation length for the last-message
	// preview shown in session listings.
	SessionPreviewLength = 100

	// SessionTitleLength is the truncation length for the session title
	// derived from the first user message.
	SessionTitleLength = 50

	// DefaultSessionTitle is used when a session has no user message yet.
	DefaultSessionTitle = "New conversation"

	// DefaultDeleteConfirmToken guards destructive session operations.
	// Override with DELETE_CONFIRM_PASSWORD in production.
	DefaultDeleteConfirmToken = "CONFIRM_DELETE"

	// MaxKeepLatest caps the keep_latest bulk-delete parameter.
	MaxKeepLatest = 50

	// DefaultMessageLimit is the default page size when fetching a
	// session's messages.
	DefaultMessageLimit = 100

	// DefaultPageSize and MaxPageSize bound session list pagination.
	DefaultPageSize = 20
	MaxPageSize     = 100

	// RecentSessionsInStats is how many recently active sessions the
	// stats endpoint reports.
	RecentSessionsInStats = 10
)

package models

import "time"

// A session is not stored on its own - it is the set of messages sharing a
// session ID. These types are derived views computed by aggregation.

// SessionOverview is one row in the session listing.
type SessionOverview struct {
	SessionID    string    `json:"session_id"`
	LastMessage  string    `json:"last_message"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
}

// SessionSummary describes a single session.
// CreatedAt/LastActivity are nil when the session has no messages.
type SessionSummary struct {
	SessionID     string     `json:"session_id"`
	TotalMessages int        `json:"total_messages"`
	CreatedAt     *time.Time `json:"created_at"`
	LastActivity  *time.Time `json:"last_activity"`
	Title         string     `json:"title"`
}

// SessionStats is the store-wide statistics view.
type SessionStats struct {
	TotalMessages  int               `json:"total_messages"`
	TotalSessions  int               `json:"total_sessions"`
	TodayMessages  int               `json:"today_messages"`
	Distribution   map[string]int    `json:"message_distribution"`
	RecentSessions []SessionOverview `json:"recent_sessions"`
}

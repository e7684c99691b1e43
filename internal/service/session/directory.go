package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatrelay/internal/config"
	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models"
	"chatrelay/internal/domain/repositories"
)

// Sort keys and orders accepted by List.
const (
	SortByLastActivity = "last_activity"
	SortByMessageCount = "message_count"
	OrderAsc           = "asc"
	OrderDesc          = "desc"
)

// ListRequest selects one page of the session listing.
type ListRequest struct {
	Page     int
	PageSize int
	SortBy   string
	Order    string
}

// ListResult is one page of session overviews.
type ListResult struct {
	Sessions      []models.SessionOverview `json:"sessions"`
	Page          int                      `json:"page"`
	PageSize      int                      `json:"page_size"`
	TotalSessions int                      `json:"total_sessions"`
	TotalPages    int                      `json:"total_pages"`
}

// Directory aggregates the message store into per-session views for the
// management surface. All aggregation is computed per call; this is not
// the hot path, so no materialized view is kept.
type Directory struct {
	messages repositories.MessageRepository
	logger   *slog.Logger
}

// NewDirectory creates a new session directory
func NewDirectory(messages repositories.MessageRepository, logger *slog.Logger) *Directory {
	return &Directory{
		messages: messages,
		logger:   logger,
	}
}

// List returns one page of session overviews sorted by the requested key.
func (d *Directory) List(ctx context.Context, req *ListRequest) (*ListResult, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = config.DefaultPageSize
	}
	if req.PageSize > config.MaxPageSize {
		req.PageSize = config.MaxPageSize
	}
	if req.SortBy == "" {
		req.SortBy = SortByLastActivity
	}
	if req.Order == "" {
		req.Order = OrderDesc
	}

	if err := d.validateListRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	overviews, err := d.messages.SessionOverviews(ctx)
	if err != nil {
		return nil, err
	}

	for i := range overviews {
		overviews[i].LastMessage = truncate(overviews[i].LastMessage, config.SessionPreviewLength)
	}

	sortOverviews(overviews, req.SortBy, req.Order)

	total := len(overviews)
	totalPages := (total + req.PageSize - 1) / req.PageSize
	start := (req.Page - 1) * req.PageSize
	if start > total {
		start = total
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}

	return &ListResult{
		Sessions:      overviews[start:end],
		Page:          req.Page,
		PageSize:      req.PageSize,
		TotalSessions: total,
		TotalPages:    totalPages,
	}, nil
}

// Messages returns a session's messages, oldest first.
func (d *Directory) Messages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	if limit < 1 {
		limit = config.DefaultMessageLimit
	}
	return d.messages.ListBySession(ctx, sessionID, limit)
}

// Summary describes one session: size, lifetime bounds and a title taken
// from the first user message.
func (d *Directory) Summary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	total, err := d.messages.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary := &models.SessionSummary{
		SessionID:     sessionID,
		TotalMessages: total,
		Title:         config.DefaultSessionTitle,
	}
	if total == 0 {
		return summary, nil
	}

	first, err := d.messages.FirstBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	last, err := d.messages.LastBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary.CreatedAt = &first.CreatedAt
	summary.LastActivity = &last.CreatedAt

	firstUser, err := d.messages.FirstUserBySession(ctx, sessionID)
	switch {
	case err == nil:
		summary.Title = truncate(firstUser.Content, config.SessionTitleLength)
	case errorsIsNotFound(err):
		// No user message yet; keep the placeholder title.
	default:
		return nil, err
	}

	return summary, nil
}

// Stats returns store-wide statistics. "Today" is the current UTC
// calendar date compared against each message's stored timestamp.
func (d *Directory) Stats(ctx context.Context) (*models.SessionStats, error) {
	total, err := d.messages.Count(ctx)
	if err != nil {
		return nil, err
	}

	sessionIDs, err := d.messages.DistinctSessionIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := d.messages.CountSince(ctx, midnight)
	if err != nil {
		return nil, err
	}

	roleCounts, err := d.messages.RoleCounts(ctx)
	if err != nil {
		return nil, err
	}

	overviews, err := d.messages.SessionOverviews(ctx)
	if err != nil {
		return nil, err
	}
	for i := range overviews {
		overviews[i].LastMessage = truncate(overviews[i].LastMessage, config.SessionPreviewLength)
	}
	sortOverviews(overviews, SortByLastActivity, OrderDesc)
	if len(overviews) > config.RecentSessionsInStats {
		overviews = overviews[:config.RecentSessionsInStats]
	}

	return &models.SessionStats{
		TotalMessages: total,
		TotalSessions: len(sessionIDs),
		TodayMessages: today,
		Distribution: map[string]int{
			models.RoleUser:      roleCounts[models.RoleUser],
			models.RoleAssistant: roleCounts[models.RoleAssistant],
		},
		RecentSessions: overviews,
	}, nil
}

func (d *Directory) validateListRequest(req *ListRequest) error {
	return validation.Errors{
		"sort_by": validation.Validate(req.SortBy,
			validation.In(SortByLastActivity, SortByMessageCount)),
		"order": validation.Validate(req.Order,
			validation.In(OrderAsc, OrderDesc)),
	}.Filter()
}

// sortOverviews sorts in place by the requested key, with session id as a
// stable tiebreaker so pagination never shuffles equal rows.
func sortOverviews(overviews []models.SessionOverview, sortBy, order string) {
	less := func(i, j int) bool {
		switch sortBy {
		case SortByMessageCount:
			if overviews[i].MessageCount != overviews[j].MessageCount {
				return overviews[i].MessageCount < overviews[j].MessageCount
			}
		default:
			if !overviews[i].LastActivity.Equal(overviews[j].LastActivity) {
				return overviews[i].LastActivity.Before(overviews[j].LastActivity)
			}
		}
		return overviews[i].SessionID < overviews[j].SessionID
	}

	if order == OrderDesc {
		sort.SliceStable(overviews, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(overviews, less)
}

// truncate shortens s to maxRunes runes, appending an ellipsis marker
// when anything was cut.
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

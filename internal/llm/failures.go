package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// User-facing replies for degraded results. These get persisted as regular
// assistant turns, so they are written in plain conversational language.
const (
	timeoutReply   = "Sorry, the AI service took too long to respond. Please try again in a moment."
	authReply      = "Sorry, the AI service rejected the configured credentials. Please check the API key in your .env file."
	rateLimitReply = "Sorry, the AI service is rate-limiting requests right now. Please wait a little and try again."
	transportReply = "Sorry, there was a network problem reaching the AI service. Please check your connection or API key configuration."
)

func upstreamReply(status int) string {
	return fmt.Sprintf("Sorry, the AI service had a temporary problem (error code: %d).", status)
}

// classifyStatus maps a non-2xx HTTP status to a failure category and the
// reply text shown to the user.
func classifyStatus(status int) (FailureCategory, string) {
	switch {
	case status == 401 || status == 403:
		return FailureAuth, authReply
	case status == 429:
		return FailureRateLimit, rateLimitReply
	default:
		return FailureUpstream, upstreamReply(status)
	}
}

// classifyTransport maps a transport-level error to a failure category and
// reply text. Deadline and net timeouts are reported as timeouts, anything
// else as a generic connectivity problem.
func classifyTransport(err error) (FailureCategory, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout, timeoutReply
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout, timeoutReply
	}
	return FailureTransport, transportReply
}

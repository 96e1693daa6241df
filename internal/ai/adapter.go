package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// StatusError reports a non-success HTTP status from a provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider response status %d: %s", e.StatusCode, e.Body)
}

// ErrorKind classifies a generation failure. Every kind has exactly one
// fixed user-facing reply string.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConnect
	KindTimeout
	KindModelLoading
	KindBadStatus
	KindUnexpected
)

// Fixed replies persisted as the bot message when generation fails.
// The turn still succeeds; the failure is visible only in the text.
const (
	ReplyConnectFailed = "The AI service is unavailable right now. Please make sure it is running and try again."
	ReplyTimeout       = "The request timed out. The model might be taking too long to respond."
	ReplyModelLoading  = "The AI model is currently loading. Please try again in a moment."
	ReplyBadStatus     = "I'm having trouble connecting to the AI service."
	ReplyUnexpected    = "I apologize, but I'm having trouble generating a response right now."
	ReplyEmpty         = "The model returned an empty response."
)

// Classify maps a provider error to its kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusServiceUnavailable {
			return KindModelLoading
		}
		return KindBadStatus
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) {
		return KindConnect
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnect
	}

	return KindUnexpected
}

// ReplyFor returns the fixed reply for a failure kind.
func ReplyFor(kind ErrorKind) string {
	switch kind {
	case KindConnect:
		return ReplyConnectFailed
	case KindTimeout:
		return ReplyTimeout
	case KindModelLoading:
		return ReplyModelLoading
	case KindBadStatus:
		return ReplyBadStatus
	default:
		return ReplyUnexpected
	}
}

// Adapter wraps the active provider and converts every generation
// failure into reply text at this boundary. Nothing above it sees a
// generation error; the persisted turn is never blocked by one.
type Adapter struct {
	provider Provider
}

func NewAdapter(provider Provider) *Adapter {
	return &Adapter{provider: provider}
}

func (a *Adapter) Name() string {
	return a.provider.Name()
}

// GenerateReply always returns usable message content. The second
// return value is false when the reply is a degraded error notice.
func (a *Adapter) GenerateReply(ctx context.Context, message string, history []HistoryEntry) (string, bool) {
	reply, err := a.provider.GenerateResponse(ctx, message, history)
	if err != nil {
		return ReplyFor(Classify(err)), false
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ReplyEmpty, false
	}
	return reply, true
}

// GenerateTitle asks the provider for a short title and falls back to a
// truncation of the message when the call fails or returns nothing.
func (a *Adapter) GenerateTitle(ctx context.Context, firstMessage string) string {
	title, err := a.provider.GenerateTitle(ctx, firstMessage)
	if err != nil || strings.TrimSpace(title) == "" {
		return FallbackTitle(firstMessage)
	}
	return strings.TrimSpace(title)
}

func (a *Adapter) CheckConnection(ctx context.Context) bool {
	return a.provider.CheckConnection(ctx)
}

// FallbackTitle derives a title from the first message when no model
// title is available.
func FallbackTitle(firstMessage string) string {
	const maxLen = 30
	trimmed := strings.TrimSpace(firstMessage)
	if len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen]
	}
	return "Chat about " + trimmed + "..."
}

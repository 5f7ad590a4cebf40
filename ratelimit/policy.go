// Package ratelimit caps per-org ledger submission rates. Every
// submission can cost up to one execute plus two replacements, so the
// throttle counts submissions, not transactions.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-userops/core"
)

type ThrottledError struct {
	OrgID      string
	RetryAfter time.Duration
}

func (e ThrottledError) Error() string {
	return fmt.Sprintf(
		"ratelimit: org %q throttled for %s",
		strings.TrimSpace(e.OrgID),
		e.RetryAfter,
	)
}

func (e ThrottledError) ToGatewayError() *goerrors.Error {
	metadata := map[string]any{
		"org_id": strings.TrimSpace(e.OrgID),
	}
	if e.RetryAfter > 0 {
		metadata["retry_after_ms"] = e.RetryAfter.Milliseconds()
	}
	return goerrors.New(e.Error(), goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(core.GatewayErrorRateLimited).
		WithMetadata(metadata)
}

type windowState struct {
	windowStart time.Time
	count       int
}

// SubmissionPolicy is a fixed-window counter per org.
type SubmissionPolicy struct {
	Limit  int
	Window time.Duration
	Now    func() time.Time

	mu      sync.Mutex
	windows map[string]windowState
}

func NewSubmissionPolicy(limit int, window time.Duration) *SubmissionPolicy {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return &SubmissionPolicy{
		Limit:   limit,
		Window:  window,
		Now:     func() time.Time { return time.Now().UTC() },
		windows: map[string]windowState{},
	}
}

func (p *SubmissionPolicy) Allow(_ context.Context, orgID string) error {
	if p == nil {
		return nil
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return goerrors.New("ratelimit: org id is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.GatewayErrorBadInput)
	}
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()
	state, ok := p.windows[orgID]
	if !ok || now.Sub(state.windowStart) >= p.Window {
		p.windows[orgID] = windowState{windowStart: now, count: 1}
		return nil
	}
	if state.count >= p.Limit {
		retryAfter := state.windowStart.Add(p.Window).Sub(now)
		return ThrottledError{OrgID: orgID, RetryAfter: retryAfter}.ToGatewayError()
	}
	state.count++
	p.windows[orgID] = state
	return nil
}

func (p *SubmissionPolicy) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

var _ core.SubmissionThrottle = (*SubmissionPolicy)(nil)

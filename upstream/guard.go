package upstream

import (
	"context"

	"github.com/saja-boys/jinwoo-server/resilience"
)

// GuardedReplier wraps a Replier with a circuit breaker. While the breaker
// is open the call is skipped and reported as an *UpstreamError, so the
// session controller takes its usual fallback path without waiting out the
// upstream timeout.
type GuardedReplier struct {
	inner   Replier
	breaker *resilience.Breaker
}

// NewGuardedReplier wraps replier with breaker.
func NewGuardedReplier(replier Replier, breaker *resilience.Breaker) *GuardedReplier {
	return &GuardedReplier{inner: replier, breaker: breaker}
}

// Reply delegates to the wrapped replier under the breaker.
func (g *GuardedReplier) Reply(ctx context.Context, userMessage string, missionIndex int) (string, error) {
	var reply string
	err := g.breaker.Execute(func() error {
		var innerErr error
		reply, innerErr = g.inner.Reply(ctx, userMessage, missionIndex)
		return innerErr
	})
	if err == resilience.ErrOpen {
		return "", &UpstreamError{Service: "reply", Err: err}
	}
	return reply, err
}

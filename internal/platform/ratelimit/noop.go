package ratelimit

import (
	"context"

	"github.com/marcelojr/awards/internal/domain"
)

// Noop accepts every cast; used when rate limiting is disabled.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Allow(_ context.Context, _ domain.VoterID, _ domain.CategoryID) error { return nil }

var _ domain.RateLimiter = Noop{}

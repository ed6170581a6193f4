package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state.
type Store interface {
	// ConsumeTokens refills the bucket for key, takes tokens from it and
	// reports what is left. A negative remainder means the call is denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt, now time.Time, err error)

	// Reset forgets the bucket for key.
	Reset(ctx context.Context, key string) error
}

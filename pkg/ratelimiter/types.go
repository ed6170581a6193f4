package ratelimiter

import "time"

// Result is the outcome of a single check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // tokens left; negative when denied
	ResetAt   time.Time // next refill

	checkedAt time.Time
}

// Allowed reports whether the request fits in the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long a denied caller should wait. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.checkedAt), 0)
}

// Config describes a token bucket. The defaults allow a burst of five login
// attempts and one more per minute.
type Config struct {
	Capacity       int           `env:"LOGIN_RATE_CAPACITY" envDefault:"5"`
	RefillRate     int           `env:"LOGIN_RATE_REFILL" envDefault:"1"`
	RefillInterval time.Duration `env:"LOGIN_RATE_INTERVAL" envDefault:"1m"`
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute}
}

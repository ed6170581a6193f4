// Package ratelimiter throttles login and registration attempts with a
// token bucket.
//
// A Bucket holds the limits (Config, loaded from LOGIN_RATE_*) and a Store
// holds per-key state. MemoryStore is the only backend; limits are per
// process, matching the single-node deployment of sessiond.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//	limiter, err := ratelimiter.NewBucket(store, cfg)
//
//	res, err := limiter.Allow(ctx, ratelimiter.JoinKey("login", ip, username))
//	if err == nil && !res.Allowed() {
//		ratelimiter.SetHeaders(w, res)
//		// 429
//	}
//
// Middleware applies a Bucket to every request keyed by a KeyFunc.
package ratelimiter

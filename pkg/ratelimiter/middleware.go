package ratelimiter

import (
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const maxKeyLength = 64

// KeyFunc extracts a limiter key from a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// Composite joins the non-empty keys of fns with ":". Keys longer than 64
// bytes are replaced by their FNV-1a hash in base 36.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return JoinKey(parts...)
	}
}

// JoinKey is Composite for keys that are already known.
func JoinKey(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	key := strings.Join(parts, ":")
	if len(key) <= maxKeyLength {
		return key
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return strconv.FormatUint(h.Sum64(), 36)
}

// Static returns a KeyFunc yielding s, used to namespace composite keys.
func Static(s string) KeyFunc {
	return func(*http.Request) string { return s }
}

// Middleware takes a token per request and answers 429 once the bucket
// for the request key is empty.
func Middleware(b *Bucket, keyFn KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := b.Allow(r.Context(), key)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			SetHeaders(w, res)
			if !res.Allowed() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetHeaders writes the X-RateLimit-* headers and, for a denied result,
// Retry-After rounded up to whole seconds.
func SetHeaders(w http.ResponseWriter, res *Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
	if !res.Allowed() {
		secs := int(math.Ceil(res.RetryAfter().Seconds()))
		h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
	}
}

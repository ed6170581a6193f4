// Package requestid tags every request with a correlation id.
//
// Middleware reuses a client supplied X-Request-ID when it is at most 128
// characters of [a-zA-Z0-9_-] and otherwise generates a UUID. The id is
// echoed in the response header and stored in the request context.
//
// LogExtractor plugs into logger.WithContextExtractors so that session and
// auth log records carry the request_id attribute:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LogExtractor, session.LogExtractor))
//	r.Use(requestid.Middleware)
package requestid

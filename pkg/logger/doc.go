// Package logger builds the *slog.Logger instances used across sessionkit.
//
// New is the only factory. Options pick the output format (text or JSON),
// the minimum level, static attributes and ContextExtractor callbacks that
// pull request-scoped values out of a context.Context on every record.
// WithEnvironment applies the development, staging or production preset.
//
// Attribute helpers (Error, Username, DeviceID, SessionState, ...) keep key
// names identical in every package. Helpers that take an optional value
// return an empty slog.Attr for nil/empty input, which slog drops:
//
//	log.WarnContext(ctx, "active session lookup failed",
//	    logger.Component("session"),
//	    logger.DeviceID(id),
//	    logger.Error(err),
//	)
//
// Discard returns a logger that drops everything; packages use it as their
// default so a nil logger is never dereferenced.
package logger

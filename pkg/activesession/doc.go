// Package activesession persists the last known session of each device.
//
// One record is kept per device, keyed by md5 of the device prefix (the part
// of a device or browser-session id before the first "_"):
//
//	{"session_id": "...", "username": "alice", "user_id": "u1",
//	 "device_id": "deadbeef_..._1700000000_1234_abcd0123",
//	 "last_active": "2024-03-01 10:20:30"}
//
// Load is fail-closed. A record is returned only when its stored device
// prefix matches the caller's and it was active within the TTL (7 days by
// default). Expired records are deleted as a side effect. Every failure,
// including unreadable or malformed records, satisfies
// errors.Is(err, ErrNotFound); the joined cause (ErrExpired,
// ErrDeviceMismatch, ErrMalformed, ErrStoreIO) is kept for logging.
//
// FileStore writes data/sessions/active/{key}.json through a temp file and a
// rename, so tabs touching the same record concurrently leave valid JSON;
// the last writer wins. RedisStore keeps the same records in Redis for
// deployments where the data directory is not writable.
package activesession

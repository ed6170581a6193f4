package activesession

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/device"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/timestamp"
)

// Record is the persisted state of a device's session.
type Record struct {
	SessionID  string         `json:"session_id"`
	Username   string         `json:"username"`
	UserID     string         `json:"user_id"`
	DeviceID   string         `json:"device_id"`
	LastActive timestamp.Time `json:"last_active"`
}

// Store persists one Record per device.
type Store interface {
	// Save writes the record for deviceID with last_active set to now,
	// replacing any previous record for the same device.
	Save(ctx context.Context, sessionID, username, userID, deviceID string) error

	// Load returns the record for deviceID. See package docs for the
	// validation rules; all failures satisfy errors.Is(err, ErrNotFound).
	Load(ctx context.Context, deviceID string) (*Record, error)

	// Clear deletes the record for deviceID. Clearing a missing record is not an error.
	Clear(ctx context.Context, deviceID string) error
}

// Key returns the storage key for deviceID: md5 of its device prefix.
func Key(deviceID string) string {
	sum := md5.Sum([]byte(device.Prefix(deviceID)))
	return hex.EncodeToString(sum[:])
}

// Option configures a store.
type Option func(*options)

type options struct {
	ttl       time.Duration
	clock     timestamp.Clock
	logger    *slog.Logger
	keyPrefix string
}

func defaultOptions() options {
	return options{
		ttl:    DefaultTTL,
		logger: logger.Discard(),
	}
}

// WithTTL sets how long a record stays valid after its last activity.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithKeyPrefix sets the Redis key prefix. Ignored by FileStore.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.keyPrefix = prefix }
}

func newRecord(now timestamp.Time, sessionID, username, userID, deviceID string) (Record, error) {
	if username == "" || userID == "" || deviceID == "" {
		return Record{}, ErrInvalidRecord
	}
	return Record{
		SessionID:  sessionID,
		Username:   username,
		UserID:     userID,
		DeviceID:   deviceID,
		LastActive: now,
	}, nil
}

func encodeRecord(rec Record) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	if rec.DeviceID == "" || rec.Username == "" || rec.UserID == "" || rec.LastActive.IsZero() {
		return nil, ErrMalformed
	}
	return &rec, nil
}

// check applies the device-prefix and TTL rules. expired reports whether the
// caller must delete the record.
func check(rec *Record, deviceID string, now timestamp.Time, ttl time.Duration) (expired bool, err error) {
	if device.Prefix(rec.DeviceID) != device.Prefix(deviceID) {
		return false, ErrDeviceMismatch
	}
	if now.Sub(rec.LastActive.Time) > ttl {
		return true, ErrExpired
	}
	return false, nil
}

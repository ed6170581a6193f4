// Package timestamp implements the second-resolution local timestamps used by
// session cookies and active session records ("2006-01-02 15:04:05").
package timestamp

import (
	"encoding/json"
	"errors"
	"time"
)

// Layout is the on-disk and on-wire timestamp format.
const Layout = "2006-01-02 15:04:05"

// ErrInvalidTimestamp is returned when a value does not match Layout.
var ErrInvalidTimestamp = errors.New("timestamp.invalid")

// Time is a local wall-clock time truncated to whole seconds.
// It marshals to and from a JSON string in Layout.
type Time struct {
	time.Time
}

// From truncates t to second resolution in the local zone.
func From(t time.Time) Time {
	return Time{Time: t.In(time.Local).Truncate(time.Second)}
}

// Parse parses s in Layout using the local zone.
func Parse(s string) (Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return Time{}, errors.Join(ErrInvalidTimestamp, err)
	}
	return Time{Time: t}, nil
}

// String formats the time in Layout.
func (t Time) String() string {
	return t.Format(Layout)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return nil, ErrInvalidTimestamp
	}
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Join(ErrInvalidTimestamp, err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Clock returns the current time. Components accept a Clock so tests can
// move time forward without sleeping.
type Clock func() time.Time

// Now returns the current time from c, falling back to time.Now for a nil clock.
func (c Clock) Now() Time {
	if c == nil {
		return From(time.Now())
	}
	return From(c())
}

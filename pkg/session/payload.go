package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/timestamp"
)

// Payload is the client-held session credential stored in the cookie.
type Payload struct {
	Username     string         `json:"username"`
	UserID       string         `json:"user_id"`
	Expiry       timestamp.Time `json:"expiry,omitzero"`
	LastActivity timestamp.Time `json:"last_activity,omitzero"`
}

// Expired reports whether the payload may no longer be honored. A payload
// without an expiry is always expired.
func (p Payload) Expired(now time.Time) bool {
	return p.Expiry.IsZero() || now.After(p.Expiry.Time)
}

func (p Payload) validate() error {
	if p.Username == "" || p.UserID == "" {
		return fmt.Errorf("%w: username and user_id are required", ErrMalformed)
	}
	return nil
}

// EncodePayload serializes p to JSON with timestamps in timestamp.Layout.
func EncodePayload(p Payload) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", errors.Join(ErrMalformed, err)
	}
	return string(data), nil
}

// DecodePayload parses a payload from a JSON string or bytes, an already
// structured Payload, or a generic map as produced by a JSON decoder. It
// never guesses: anything it cannot parse completely is ErrMalformed.
// Expiry is not checked; see Payload.Expired.
func DecodePayload(raw any) (Payload, error) {
	var p Payload

	switch v := raw.(type) {
	case string:
		return decodeJSON([]byte(v))
	case []byte:
		return decodeJSON(v)
	case Payload:
		p = v
	case *Payload:
		if v == nil {
			return Payload{}, ErrMalformed
		}
		p = *v
	case map[string]any:
		var err error
		if p, err = decodeMap(v); err != nil {
			return Payload{}, err
		}
	default:
		return Payload{}, fmt.Errorf("%w: unsupported type %T", ErrMalformed, raw)
	}

	if err := p.validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func decodeJSON(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, errors.Join(ErrMalformed, err)
	}
	if err := p.validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func decodeMap(m map[string]any) (Payload, error) {
	var p Payload
	var err error

	if p.Username, err = mapString(m, "username"); err != nil {
		return p, err
	}
	if p.UserID, err = mapString(m, "user_id"); err != nil {
		return p, err
	}
	if p.Expiry, err = mapTime(m, "expiry"); err != nil {
		return p, err
	}
	if p.LastActivity, err = mapTime(m, "last_activity"); err != nil {
		return p, err
	}
	return p, nil
}

func mapString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T", ErrMalformed, key, v)
	}
	return s, nil
}

func mapTime(m map[string]any, key string) (timestamp.Time, error) {
	s, err := mapString(m, key)
	if err != nil || s == "" {
		return timestamp.Time{}, err
	}
	t, err := timestamp.Parse(s)
	if err != nil {
		return timestamp.Time{}, errors.Join(ErrMalformed, err)
	}
	return t, nil
}

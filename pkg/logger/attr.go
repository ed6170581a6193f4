package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups non-nil errors under "errors"; all-nil input yields an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Username records the account name under "username".
func Username(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("username", name)
}

// UserID records the user identifier under "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// DeviceID records a device or browser-session id under "device_id".
func DeviceID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("device_id", id)
}

// SessionState records a resolution outcome under "session_state".
func SessionState(state string) slog.Attr {
	return slog.String("session_state", state)
}

// OpKey records a cookie operation key under "op_key".
func OpKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("op_key", key)
}

// Path records a filesystem path under "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// RequestID records the request identifier under "request_id".
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Duration records a duration under "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

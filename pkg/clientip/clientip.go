package clientip

import (
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders are consulted, in order, before RemoteAddr.
var DefaultHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// FromRequest returns the normalized client IP of r. Each header in headers
// is tried in order; for list headers such as X-Forwarded-For the first
// valid entry wins. RemoteAddr is the fallback. It returns "" when nothing
// parses as an IP.
func FromRequest(r *http.Request, headers ...string) string {
	for _, h := range headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		for part := range strings.SplitSeq(v, ",") {
			if ip := normalize(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}

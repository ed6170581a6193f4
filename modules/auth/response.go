package auth

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// StatusResponse describes the identity visible to the client.
type StatusResponse struct {
	Authenticated bool           `json:"authenticated"`
	State         string         `json:"state"`
	Username      string         `json:"username,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	Expiry        string         `json:"expiry,omitempty"`
	LastActivity  string         `json:"last_activity,omitempty"`
	User          *identity.User `json:"user,omitempty"`
}

func newStatus(id *session.Identity, state session.State) StatusResponse {
	resp := StatusResponse{State: state.String()}
	if id == nil || state != session.StateAuthenticated {
		return resp
	}
	resp.Authenticated = true
	resp.Username = id.Username
	resp.UserID = id.UserID
	resp.User = id.User
	if !id.Expiry.IsZero() {
		resp.Expiry = id.Expiry.String()
	}
	if !id.LastActivity.IsZero() {
		resp.LastActivity = id.LastActivity.String()
	}
	return resp
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

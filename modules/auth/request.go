package auth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const maxBodySize = 64 << 10

// LoginRequest carries the raw credential only as far as CredentialHash.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) fromForm(v url.Values) {
	r.Username = v.Get("username")
	r.Password = v.Get("password")
}

func (r *LoginRequest) normalize() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" {
		return errors.Join(ErrInvalidRequest, errors.New("username and password are required"))
	}
	return nil
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
}

func (r *RegisterRequest) fromForm(v url.Values) {
	r.Username = v.Get("username")
	r.Password = v.Get("password")
	r.Email = v.Get("email")
	r.Gender = v.Get("gender")
}

func (r *RegisterRequest) normalize() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Gender = strings.TrimSpace(r.Gender)
	if r.Username == "" || r.Password == "" {
		return errors.Join(ErrInvalidRequest, errors.New("username and password are required"))
	}
	return nil
}

type formRequest interface {
	fromForm(url.Values)
	normalize() error
}

// bind decodes a JSON or urlencoded form body into v.
func bind(r *http.Request, v formRequest) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return errors.Join(ErrUnsupportedMediaType, err)
	}

	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return errors.Join(ErrInvalidRequest, err)
		}
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
		if err := r.ParseForm(); err != nil {
			return errors.Join(ErrInvalidRequest, err)
		}
		v.fromForm(r.PostForm)
	default:
		return ErrUnsupportedMediaType
	}

	return v.normalize()
}

// wantsJSON reports whether the client asked for a JSON response instead of
// a redirect.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json")
}

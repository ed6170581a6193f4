package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

const defaultTimeout = 5 * time.Second

// Client calls a remote identity service:
//
//	POST {base}/verify          {"username", "credential_hash"} -> Result
//	GET  {base}/users/{name}    -> User
//	POST {base}/users           Registration -> User
//
// Every call is bounded by the configured timeout.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

var _ Service = (*Client)(nil)

type ClientOption func(*Client)

// WithTimeout bounds each call. Non-positive values keep the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		logger:  logger.Discard(),
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type verifyRequest struct {
	Username       string `json:"username"`
	CredentialHash string `json:"credential_hash"`
}

// Verify checks the credentials. Rejected credentials are reported through
// Result with a nil error; a nil Result.User on success is treated as a
// rejection.
func (c *Client) Verify(ctx context.Context, username, credentialHash string) (Result, error) {
	var res Result
	status, err := c.do(ctx, http.MethodPost, "/verify", verifyRequest{username, credentialHash}, &res)
	if err != nil {
		return Result{}, err
	}
	if status == http.StatusUnauthorized || status == http.StatusNotFound {
		return Result{Success: false, Message: msgInvalidCredentials}, nil
	}
	if status != http.StatusOK {
		return Result{}, fmt.Errorf("%w: verify returned %d", ErrUnavailable, status)
	}
	if res.Success && res.User == nil {
		return Result{Success: false, Message: msgInvalidCredentials}, nil
	}
	return res, nil
}

func (c *Client) Lookup(ctx context.Context, username string) (*User, error) {
	var u User
	status, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil, &u)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &u, nil
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("%w: lookup returned %d", ErrUnavailable, status)
	}
}

func (c *Client) Register(ctx context.Context, reg Registration) (*User, error) {
	var u User
	status, err := c.do(ctx, http.MethodPost, "/users", reg, &u)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		return &u, nil
	case http.StatusConflict:
		return nil, ErrUserExists
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return nil, ErrInvalidInput
	default:
		return nil, fmt.Errorf("%w: register returned %d", ErrUnavailable, status)
	}
}

// do sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses are returned by status code only.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, errors.Join(ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "identity service request failed",
			logger.Component("identity"),
			logger.Path(path),
			logger.Error(err),
		)
		return 0, errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
			return 0, errors.Join(ErrUnavailable, err)
		}
	}
	return resp.StatusCode, nil
}

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/sessionkit/internal/fsx"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/timestamp"
)

const defaultBcryptCost = 12

// storedUser is the on-disk form of a user; Password is a bcrypt hash of
// the credential hash.
type storedUser struct {
	User
	Password string `json:"password"`
}

// FileDirectory stores users in a JSON object keyed by username.
type FileDirectory struct {
	path   string
	cost   int
	now    timestamp.Clock
	logger *slog.Logger
	mu     sync.Mutex
}

var _ Service = (*FileDirectory)(nil)

type DirectoryOption func(*FileDirectory)

// WithBcryptCost sets the bcrypt cost for new accounts.
func WithBcryptCost(cost int) DirectoryOption {
	return func(d *FileDirectory) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			d.cost = cost
		}
	}
}

func WithDirectoryClock(now func() time.Time) DirectoryOption {
	return func(d *FileDirectory) { d.now = now }
}

func WithDirectoryLogger(l *slog.Logger) DirectoryOption {
	return func(d *FileDirectory) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewFileDirectory creates a directory backed by path. The file is created
// on the first registration.
func NewFileDirectory(path string, opts ...DirectoryOption) *FileDirectory {
	d := &FileDirectory{
		path:   path,
		cost:   defaultBcryptCost,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *FileDirectory) Verify(ctx context.Context, username, credentialHash string) (Result, error) {
	users, err := d.load()
	if err != nil {
		return Result{}, err
	}

	u, ok := users[username]
	if !ok {
		return Result{Success: false, Message: msgInvalidCredentials}, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(credentialHash)); err != nil {
		return Result{Success: false, Message: msgInvalidCredentials}, nil
	}

	user := u.User
	return Result{Success: true, User: &user}, nil
}

func (d *FileDirectory) Lookup(ctx context.Context, username string) (*User, error) {
	users, err := d.load()
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := u.User
	return &user, nil
}

// Register creates an account. Usernames and emails are unique.
func (d *FileDirectory) Register(ctx context.Context, reg Registration) (*User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Username == "" || reg.CredentialHash == "" {
		return nil, ErrInvalidInput
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load()
	if err != nil {
		return nil, err
	}
	if _, ok := users[reg.Username]; ok {
		return nil, ErrUserExists
	}
	if reg.Email != "" {
		for _, u := range users {
			if strings.EqualFold(u.Email, reg.Email) {
				return nil, ErrEmailTaken
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.CredentialHash), d.cost)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	u := storedUser{
		User: User{
			ID:        uuid.NewString(),
			Username:  reg.Username,
			Email:     reg.Email,
			Gender:    reg.Gender,
			CreatedAt: d.now.Now(),
		},
		Password: string(hash),
	}
	users[reg.Username] = u

	if err := d.save(users); err != nil {
		return nil, err
	}

	d.logger.InfoContext(ctx, "user registered",
		logger.Component("identity"),
		logger.Username(u.Username),
		logger.UserID(u.ID),
	)

	user := u.User
	return &user, nil
}

func (d *FileDirectory) load() (map[string]storedUser, error) {
	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return map[string]storedUser{}, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	if len(data) == 0 {
		return map[string]storedUser{}, nil
	}

	users := map[string]storedUser{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	for name, u := range users {
		if u.Username == "" {
			u.Username = name
			users[name] = u
		}
	}
	return users, nil
}

func (d *FileDirectory) save(users map[string]storedUser) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	if err := fsx.WriteFileAtomic(d.path, data, 0o600); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

package device

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"math/big"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/internal/fsx"
	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// Separator joins the parts of device and browser-session ids.
const Separator = "_"

// Identity hands out the persistent device id and fresh browser-session ids.
// It is safe for concurrent use.
type Identity struct {
	path        string
	fingerprint func() string
	now         func() time.Time
	logger      *slog.Logger

	mu sync.Mutex
	id string
}

// Option configures an Identity.
type Option func(*Identity)

// WithFingerprint overrides the machine fingerprint function.
func WithFingerprint(fn func() string) Option {
	return func(i *Identity) {
		if fn != nil {
			i.fingerprint = fn
		}
	}
}

// WithClock overrides the time source used for the id timestamp.
func WithClock(now func() time.Time) Option {
	return func(i *Identity) {
		if now != nil {
			i.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Identity) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Identity persisting its id at path.
func New(path string, opts ...Option) *Identity {
	i := &Identity{
		path:        path,
		fingerprint: fingerprint.Default().Generate,
		now:         time.Now,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// NewFromConfig creates an Identity from Config.
func NewFromConfig(cfg Config, opts ...Option) *Identity {
	if cfg.IDFile == "" {
		cfg.IDFile = DefaultConfig().IDFile
	}
	return New(cfg.IDFile, opts...)
}

// DeviceID returns the persistent device id, creating it on first use.
// The value is memoized for the life of the Identity.
func (i *Identity) DeviceID() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.id != "" {
		return i.id
	}

	if id, err := ReadID(i.path); err == nil {
		i.id = id
		return id
	}

	id := i.generate()
	if err := fsx.WriteFileAtomic(i.path, []byte(id), 0o644); err != nil {
		err = errors.Join(ErrPersist, err)
		i.logger.Warn("device id not persisted",
			logger.Component("device"),
			logger.Path(i.path),
			logger.Error(err),
		)
	}
	i.id = id
	return id
}

// BrowserSessionID returns a new id for one client context:
// {device id}_{1000..9999}_{8 hex}. Callers cache it for the context.
func (i *Identity) BrowserSessionID() string {
	return i.DeviceID() + Separator + randomDigits() + Separator + randomHex8()
}

func (i *Identity) generate() string {
	fp := i.fingerprint()
	if len(fp) > 8 {
		fp = fp[:8]
	}
	return strings.Join([]string{
		fp,
		uuid.NewString(),
		strconv.FormatInt(i.now().Unix(), 10),
	}, Separator)
}

// Prefix returns the device part of a device or browser-session id: the text
// before the first separator, or the whole id when there is none.
func Prefix(id string) string {
	prefix, _, _ := strings.Cut(id, Separator)
	return prefix
}

// ReadID returns the trimmed contents of the id file.
func ReadID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrEmptyIDFile
	}
	return id, nil
}

func randomDigits() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano()%9000+1000, 10)
	}
	return strconv.FormatInt(n.Int64()+1000, 10)
}

func randomHex8() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()[:8]
	}
	return hex.EncodeToString(b)
}

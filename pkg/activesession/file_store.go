package activesession

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/sessionkit/internal/fsx"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// FileStore keeps each record in {dir}/{Key(deviceID)}.json.
type FileStore struct {
	dir  string
	opts options
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string, opts ...Option) *FileStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FileStore{dir: dir, opts: o}
}

// Path returns the record file for deviceID.
func (s *FileStore) Path(deviceID string) string {
	return filepath.Join(s.dir, Key(deviceID)+".json")
}

func (s *FileStore) Save(ctx context.Context, sessionID, username, userID, deviceID string) error {
	rec, err := newRecord(s.opts.clock.Now(), sessionID, username, userID, deviceID)
	if err != nil {
		return err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return errors.Join(ErrStoreIO, err)
	}
	if err := fsx.WriteFileAtomic(s.Path(deviceID), data, 0o600); err != nil {
		return errors.Join(ErrStoreIO, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, deviceID string) (*Record, error) {
	path := s.Path(deviceID)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, notFound(ErrStoreIO, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, notFound(err)
	}

	expired, err := check(rec, deviceID, s.opts.clock.Now(), s.opts.ttl)
	if expired {
		if rmErr := fsx.RemoveIfExists(path); rmErr != nil {
			s.opts.logger.WarnContext(ctx, "expired active session not removed",
				logger.Component("activesession"),
				logger.Path(path),
				logger.Error(rmErr),
			)
		}
	}
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

func (s *FileStore) Clear(ctx context.Context, deviceID string) error {
	if err := fsx.RemoveIfExists(s.Path(deviceID)); err != nil {
		return errors.Join(ErrStoreIO, err)
	}
	return nil
}

// Healthcheck verifies the store directory can be created.
func (s *FileStore) Healthcheck(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Join(ErrStoreIO, err)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// DefaultLockTimeout bounds how long an invocation waits for another
// process to release a collection lock.
const DefaultLockTimeout = 5 * time.Second

// lockRetryDelay is the poll interval while waiting on a held lock.
const lockRetryDelay = 25 * time.Millisecond

// FileStore keeps each collection as <dir>/<collection>.json with a
// sibling .lock file carrying the advisory lock. Writes go to a temp
// file in the same directory and land via atomic rename, so a crash
// mid-write never exposes a half-written document.
type FileStore struct {
	dir         string
	lockTimeout time.Duration
	log         *zap.Logger
}

// FileStoreOptions configures a FileStore. Zero values fall back to
// defaults.
type FileStoreOptions struct {
	LockTimeout time.Duration
	Logger      *zap.Logger
}

// NewFileStore creates the data directory if needed and returns a store
// rooted there.
func NewFileStore(dir string, opts FileStoreOptions) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &FileStore{
		dir:         dir,
		lockTimeout: opts.LockTimeout,
		log:         opts.Logger,
	}, nil
}

// WithLock implements TransactionalStore.
func (s *FileStore) WithLock(ctx context.Context, collection string, fn func(doc []byte) ([]byte, error)) error {
	path := s.docPath(collection)
	fl := flock.New(path + ".lock")
	if err := s.acquire(ctx, fl, collection, false); err != nil {
		return err
	}
	defer func() { _ = fl.Close() }()

	doc, err := s.read(path, collection)
	if err != nil {
		return err
	}

	out, err := fn(doc)
	if err != nil {
		return err
	}
	return s.writeAtomic(path, collection, out)
}

// Load implements TransactionalStore. The shared lock is dropped as soon
// as the bytes are in memory; formatting happens outside it.
func (s *FileStore) Load(ctx context.Context, collection string) ([]byte, error) {
	path := s.docPath(collection)
	fl := flock.New(path + ".lock")
	if err := s.acquire(ctx, fl, collection, true); err != nil {
		return nil, err
	}
	defer func() { _ = fl.Close() }()

	return s.read(path, collection)
}

// Close implements TransactionalStore. Locks are per-call, so there is
// nothing to release.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) docPath(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) acquire(ctx context.Context, fl *flock.Flock, collection string, shared bool) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var (
		ok  bool
		err error
	)
	if shared {
		ok, err = fl.TryRLockContext(lockCtx, lockRetryDelay)
	} else {
		ok, err = fl.TryLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s held past %s", ErrLockTimeout, collection, s.lockTimeout)
		}
		return fmt.Errorf("locking %s: %w", collection, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLockTimeout, collection)
	}
	return nil
}

// read returns the raw document, or nil when the file is absent or not
// valid JSON. Corruption is logged and quarantined, never fatal.
func (s *FileStore) read(path, collection string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	if len(data) > 0 && !json.Valid(data) {
		s.log.Warn("corrupt document, starting empty",
			zap.String("collection", collection),
			zap.String("path", path))
		return nil, nil
	}
	return data, nil
}

func (s *FileStore) writeAtomic(path, collection string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", collection, err)
	}
	return nil
}

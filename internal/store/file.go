package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/log"
)

// lockRetryDelay is how often a blocked FileStore retries its lock.
const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps a document in a single file. The codec follows the file
// extension. Every Load and Save holds an exclusive lock on a sidecar
// "<path>.lock" file, and Save replaces the file atomically.
type FileStore struct {
	path  string
	codec Codec
	lock  *flock.Flock
}

// NewFileStore creates a store for path. The file need not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	codec, err := CodecFor(format)
	if err != nil {
		return nil, err
	}
	return &FileStore{
		path:  path,
		codec: codec,
		lock:  flock.New(path + ".lock"),
	}, nil
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

// Format returns the document encoding.
func (s *FileStore) Format() Format {
	return s.codec.Format()
}

// Load reads and decodes the document.
func (s *FileStore) Load(ctx context.Context) (inventory.Document, error) {
	data, err := s.readLocked(ctx)
	if err != nil {
		return inventory.Document{}, err
	}

	doc, err := s.codec.Decode(bytes.NewReader(data))
	if err != nil {
		return inventory.Document{}, fmt.Errorf("loading %s: %w", s.path, err)
	}
	log.Debug(log.CatStore, "document loaded", "path", s.path, "assets", len(doc.Assets))
	return doc, nil
}

// Raw returns the file contents as stored.
func (s *FileStore) Raw(ctx context.Context) ([]byte, error) {
	return s.readLocked(ctx)
}

// Encode renders doc in the store's format without writing it.
func (s *FileStore) Encode(doc inventory.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *FileStore) readLocked(ctx context.Context) ([]byte, error) {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return data, nil
}

// Save encodes doc into a temp file next to the target and renames it over
// the target.
func (s *FileStore) Save(ctx context.Context, doc inventory.Document) error {
	data, err := s.Encode(doc)
	if err != nil {
		return fmt.Errorf("saving %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	log.Info(log.CatStore, "document saved", "path", s.path, "format", s.codec.Format(), "assets", len(doc.Assets))
	return nil
}

func (s *FileStore) acquire(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrLocked, ctx.Err())
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			log.ErrorErr(log.CatStore, "failed to release document lock", err, "path", s.path)
		}
	}, nil
}

package staging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophterm/internal/common"
	"github.com/dmitrijs2005/gophterm/internal/filex"
	"github.com/dmitrijs2005/gophterm/internal/logging"
)

// Store owns a staging directory and the Files created in it.
//
// It deletes a file from disk once the file has finished (completed or
// failed) and its reference count is zero, whichever of the two happens
// last. A file that was never referenced stays until Close.
type Store struct {
	dir    string
	logger logging.Logger
	opts   []Option

	mu     sync.Mutex
	files  map[string]*File
	closed bool
}

// NewStore creates dir if needed and returns a Store using it. opts are
// applied to every File the store creates.
func NewStore(dir string, logger logging.Logger, opts ...Option) (*Store, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("staging dir: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Store{
		dir:    abs,
		logger: logger,
		opts:   append([]Option{WithLogger(logger)}, opts...),
		files:  make(map[string]*File),
	}, nil
}

func (s *Store) Dir() string { return s.dir }

// Create stages a new file with the given metadata.
func (s *Store) Create(metadata map[string]string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("staging store: %w", common.ErrorClosed)
	}

	f, err := Create(s.dir, metadata, s.opts...)
	if err != nil {
		return nil, err
	}

	id := f.id
	var referenced atomic.Bool
	f.OnReferenceCountChange(func(refs int) {
		if refs != 0 {
			referenced.Store(true)
			return
		}
		if state, alive := f.peekState(); alive && state != StateDownloading {
			s.release(id)
		}
	})
	f.OnStateChange(func(state State) {
		if state == StateDownloading || !referenced.Load() {
			return
		}
		if refs, alive := f.peekRefs(); alive && refs == 0 {
			s.release(id)
		}
	})
	s.files[id] = f

	s.logger.Debug(context.Background(), "staged file created", "id", id, "path", f.path)
	return f, nil
}

// Get returns the live file with the given id.
func (s *Store) Get(id string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("staged file %s: %w", id, common.ErrorNotFound)
	}
	return f, nil
}

// Len returns the number of live files.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// release disposes the file and removes it from disk.
func (s *Store) release(id string) {
	s.mu.Lock()
	f, ok := s.files[id]
	delete(s.files, id)
	s.mu.Unlock()

	if !ok {
		return
	}

	path := f.path
	f.Dispose()
	if err := filex.RemoveIfExists(path); err != nil {
		s.logger.Warn(context.Background(), "remove staged file", "id", id, "error", err)
		return
	}
	s.logger.Debug(context.Background(), "staged file removed", "id", id)
}

// Close disposes every file and deletes them from disk. The Store cannot be
// used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	files := s.files
	s.files = make(map[string]*File)
	s.mu.Unlock()

	var errs []error
	for _, f := range files {
		f.Dispose()
		if err := filex.RemoveIfExists(f.path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

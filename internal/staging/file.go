package staging

import (
	"context"
	"crypto/cipher"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/gophterm/internal/common"
	"github.com/dmitrijs2005/gophterm/internal/cryptox"
	"github.com/dmitrijs2005/gophterm/internal/filex"
	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/dmitrijs2005/gophterm/internal/notify"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// PeekSize is the number of leading plaintext bytes kept in memory for
	// content sniffing.
	PeekSize = 1024

	fileExt = ".bulk"

	// Metadata keys with a meaning to the File itself.
	MetaFileName = "filename"
	MetaFileSize = "filesize"
	MetaMimeType = "mimeType"
)

// File is one staged bulk transfer.
//
// All methods are safe for concurrent use. Once Dispose has been called every
// method except Dispose and Disposed panics with an error wrapping
// ErrDisposed.
type File struct {
	id     string
	path   string
	key    *cryptox.FileKey
	logger logging.Logger

	// writeMu serialises the writer side: Write, SetSuccess and Dispose.
	writeMu sync.Mutex
	w       *os.File
	enc     cipher.Stream
	werr    error

	mu           sync.Mutex
	metadata     map[string]string
	state        State
	committed    int64
	peek         []byte
	refs         int
	signalled    bool
	writerClosed bool
	disposed     bool
	changed      chan struct{}
	readers      map[*Reader]struct{}

	size     *notify.Coalescer[int64]
	sizeObs  notify.List[int64]
	stateObs notify.List[State]
	refObs   notify.List[int]
}

// Create starts a new staged file in dir. The metadata map is copied.
func Create(dir string, metadata map[string]string, opts ...Option) (*File, error) {
	o := buildOptions(opts)

	id := uuid.NewString()
	path := filepath.Join(dir, id+fileExt)

	key := cryptox.NewFileKey()
	enc, err := key.Stream()
	if err != nil {
		return nil, err
	}

	w, err := filex.CreateExclusive(path)
	if err != nil {
		return nil, err
	}

	f := &File{
		id:       id,
		path:     path,
		key:      key,
		logger:   o.logger.With("file", id),
		w:        w,
		enc:      enc,
		metadata: maps.Clone(metadata),
		state:    StateDownloading,
		peek:     make([]byte, 0, PeekSize),
		changed:  make(chan struct{}),
		readers:  make(map[*Reader]struct{}),
	}
	if f.metadata == nil {
		f.metadata = make(map[string]string)
	}
	f.size = notify.NewCoalescer(o.sizeInterval, f.sizeObs.Emit)

	return f, nil
}

// lockAlive takes f.mu and panics if f has been disposed.
func (f *File) lockAlive() {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		panic(fmt.Errorf("file %s: %w", f.id, ErrDisposed))
	}
}

// broadcastLocked wakes every reader waiting for growth or a state change.
func (f *File) broadcastLocked() {
	close(f.changed)
	f.changed = make(chan struct{})
}

func (f *File) ID() string {
	f.lockAlive()
	defer f.mu.Unlock()
	return f.id
}

// Path returns the location of the encrypted backing file.
func (f *File) Path() string {
	f.lockAlive()
	defer f.mu.Unlock()
	return f.path
}

// URL returns the logical address of the file, bulk://<id>.
func (f *File) URL() string {
	f.lockAlive()
	defer f.mu.Unlock()
	return common.BulkURLScheme + "://" + f.id
}

// Metadata returns a copy of the metadata map.
func (f *File) Metadata() map[string]string {
	f.lockAlive()
	defer f.mu.Unlock()
	return maps.Clone(f.metadata)
}

func (f *File) MetadataField(key string) (string, bool) {
	f.lockAlive()
	defer f.mu.Unlock()
	v, ok := f.metadata[key]
	return v, ok
}

func (f *File) SetMetadataField(key, value string) {
	f.lockAlive()
	defer f.mu.Unlock()
	f.metadata[key] = value
}

// TotalSize returns the declared size from the filesize metadata field, or
// -1 when it is missing or not a non-negative integer.
func (f *File) TotalSize() int64 {
	f.lockAlive()
	defer f.mu.Unlock()

	n, err := strconv.ParseInt(f.metadata[MetaFileSize], 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// AvailableSize returns the number of bytes committed so far.
func (f *File) AvailableSize() int64 {
	f.lockAlive()
	defer f.mu.Unlock()
	return f.committed
}

func (f *File) State() State {
	f.lockAlive()
	defer f.mu.Unlock()
	return f.state
}

func (f *File) RefCount() int {
	f.lockAlive()
	defer f.mu.Unlock()
	return f.refs
}

// PeekBuffer returns a copy of the first min(PeekSize, AvailableSize())
// plaintext bytes.
func (f *File) PeekBuffer() []byte {
	f.lockAlive()
	defer f.mu.Unlock()
	return append([]byte(nil), f.peek...)
}

// MimeType returns the mimeType metadata field when set, otherwise the type
// detected from the peek buffer.
func (f *File) MimeType() string {
	f.lockAlive()
	if v := f.metadata[MetaMimeType]; v != "" {
		f.mu.Unlock()
		return v
	}
	peek := append([]byte(nil), f.peek...)
	f.mu.Unlock()

	return mimetype.Detect(peek).String()
}

// Write encrypts p and appends it to the backing file. It fails with
// ErrNotDownloading once SetSuccess has been called. The committed size
// advances only after the bytes have been written to the file.
func (f *File) Write(p []byte) (int, error) {
	n, size, err := f.write(p)

	if n > 0 {
		f.size.Publish(size)
	}
	return n, err
}

func (f *File) write(p []byte) (int, int64, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.lockAlive()
	if f.state != StateDownloading || f.writerClosed {
		f.mu.Unlock()
		return 0, 0, ErrNotDownloading
	}
	f.mu.Unlock()

	if f.werr != nil {
		return 0, 0, f.werr
	}
	if len(p) == 0 {
		return 0, 0, nil
	}

	buf := make([]byte, len(p))
	f.enc.XORKeyStream(buf, p)

	n, err := f.w.Write(buf)
	if err != nil {
		// The keystream already moved past the unwritten tail.
		f.werr = fmt.Errorf("write %s: %w", f.path, err)
		f.logger.Error(context.Background(), "staging write failed", "error", err)
	}

	f.mu.Lock()
	f.committed += int64(n)
	if room := PeekSize - len(f.peek); room > 0 {
		f.peek = append(f.peek, p[:min(room, n)]...)
	}
	size := f.committed
	f.broadcastLocked()
	f.mu.Unlock()

	return n, size, f.werr
}

// SetSuccess ends the transfer. It closes the backing file for writing and
// then moves the file to StateCompleted or StateFailed. A failure to close
// turns success into failure. Only the first call has an effect; later calls
// return ErrAlreadySignalled.
func (f *File) SetSuccess(success bool) error {
	state, err := f.finish(success)
	if errors.Is(err, ErrAlreadySignalled) {
		return err
	}

	f.size.Flush()
	f.logger.Debug(context.Background(), "staging file finished", "state", state)
	f.stateObs.Emit(state)

	return err
}

func (f *File) finish(success bool) (State, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.lockAlive()
	if f.signalled {
		f.mu.Unlock()
		return 0, ErrAlreadySignalled
	}
	f.signalled = true
	f.mu.Unlock()

	var closeErr error
	if err := f.w.Close(); err != nil {
		closeErr = fmt.Errorf("close %s: %w", f.path, err)
		success = false
	}
	if f.werr != nil {
		success = false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.writerClosed = true
	if success {
		f.state = StateCompleted
	} else {
		f.state = StateFailed
	}
	f.broadcastLocked()
	return f.state, closeErr
}

// Ref increments the reference count.
func (f *File) Ref() {
	f.lockAlive()
	f.refs++
	n := f.refs
	f.mu.Unlock()

	f.refObs.Emit(n)
}

// Deref decrements the reference count. Dereferencing at zero is logged and
// ignored.
func (f *File) Deref() {
	f.lockAlive()
	if f.refs == 0 {
		f.mu.Unlock()
		f.logger.Warn(context.Background(), "deref of unreferenced file")
		return
	}
	f.refs--
	n := f.refs
	f.mu.Unlock()

	f.refObs.Emit(n)
}

// OnAvailableSizeChange registers fn for coalesced committed size updates.
// The latest size is always delivered before the state change event.
func (f *File) OnAvailableSizeChange(fn func(size int64)) (cancel func()) {
	f.lockAlive()
	defer f.mu.Unlock()
	return f.sizeObs.Add(fn)
}

func (f *File) OnStateChange(fn func(State)) (cancel func()) {
	f.lockAlive()
	defer f.mu.Unlock()
	return f.stateObs.Add(fn)
}

// OnReferenceCountChange registers fn, called with the new count after every
// Ref and Deref.
func (f *File) OnReferenceCountChange(fn func(refs int)) (cancel func()) {
	f.lockAlive()
	defer f.mu.Unlock()
	return f.refObs.Add(fn)
}

// NewReader opens an independent tailing reader positioned at offset 0.
func (f *File) NewReader() (*Reader, error) {
	f.lockAlive()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open reader: %w", err)
	}
	dec, err := f.key.Stream()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	r := &Reader{f: f, file: file, dec: dec}
	f.readers[r] = struct{}{}
	return r, nil
}

// peekState returns the state without panicking on a disposed file.
func (f *File) peekState() (State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, !f.disposed
}

// peekRefs returns the reference count without panicking on a disposed file.
func (f *File) peekRefs() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs, !f.disposed
}

// Disposed reports whether Dispose has been called. It never panics.
func (f *File) Disposed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disposed
}

// Dispose releases the file. Open readers are closed and fail with
// ErrDisposed, an open writer is closed, and pending notifications are
// dropped. The backing file is left on disk. Calling Dispose again is a
// no-op.
func (f *File) Dispose() {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.disposed = true

	readers := make([]*Reader, 0, len(f.readers))
	for r := range f.readers {
		r.killed = true
		readers = append(readers, r)
	}
	f.readers = nil

	closeWriter := !f.writerClosed
	f.writerClosed = true
	f.broadcastLocked()
	f.mu.Unlock()

	if closeWriter {
		if err := f.w.Close(); err != nil {
			f.logger.Warn(context.Background(), "close writer on dispose", "error", err)
		}
	}
	for _, r := range readers {
		_ = r.file.Close()
	}

	f.size.Stop()
	f.sizeObs.Clear()
	f.stateObs.Clear()
	f.refObs.Clear()
	f.key.Wipe()
}

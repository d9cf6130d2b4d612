package staging

import (
	"context"
	"crypto/cipher"
	"fmt"
	"io"
	"os"
)

// Reader is a tailing reader over a File. It returns bytes as soon as they
// are committed and io.EOF once the writer has finished and every committed
// byte was read.
//
// A Reader is meant for one goroutine; Close may be called from any.
type Reader struct {
	f      *File
	file   *os.File
	dec    cipher.Stream
	offset int64

	// guarded by f.mu
	closed bool
	killed bool
}

var _ io.ReadCloser = (*Reader)(nil)

// Read blocks until at least one byte is available, the writer finishes, or
// the file is disposed.
func (r *Reader) Read(p []byte) (int, error) {
	return r.ReadContext(context.Background(), p)
}

// ReadContext is Read with cancellation while waiting for data.
func (r *Reader) ReadContext(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	f := r.f
	for {
		f.mu.Lock()
		switch {
		case r.killed:
			f.mu.Unlock()
			return 0, ErrDisposed
		case r.closed:
			f.mu.Unlock()
			return 0, ErrReaderClosed
		}

		if avail := f.committed - r.offset; avail > 0 {
			f.mu.Unlock()
			return r.readAt(p[:min(int64(len(p)), avail)])
		}
		if f.writerClosed {
			f.mu.Unlock()
			return 0, io.EOF
		}
		wait := f.changed
		f.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (r *Reader) readAt(p []byte) (int, error) {
	n, err := r.file.ReadAt(p, r.offset)
	if n < len(p) {
		r.f.mu.Lock()
		killed := r.killed
		r.f.mu.Unlock()
		if killed {
			return 0, ErrDisposed
		}
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("read staged file: %w", err)
	}

	r.dec.XORKeyStream(p, p)
	r.offset += int64(n)
	return n, nil
}

// Offset returns the number of bytes read so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Close releases the reader. Other readers and the writer are unaffected.
func (r *Reader) Close() error {
	f := r.f
	f.mu.Lock()
	if r.closed || r.killed {
		r.closed = true
		f.mu.Unlock()
		return nil
	}
	r.closed = true
	if f.readers != nil {
		delete(f.readers, r)
	}
	f.broadcastLocked()
	f.mu.Unlock()

	return r.file.Close()
}

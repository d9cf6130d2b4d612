// Package upload streams a staged file out through a flow-controlled text
// transport as a self-describing base64 envelope.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophterm/internal/common"
	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/dmitrijs2005/gophterm/internal/notify"
)

var (
	ErrAborted   = fmt.Errorf("upload: %w", common.ErrorAborted)
	ErrLineWidth = errors.New("upload: line width must be a positive multiple of 4")
)

// contextReader is implemented by sources that can stop waiting for data,
// such as staging readers.
type contextReader interface {
	ReadContext(ctx context.Context, p []byte) (int, error)
}

// Encoder frames bytes read from a source into the upload envelope and
// writes them to a Transport without exceeding its budget.
//
// A single pump goroutine reads the source and writes to the transport.
// Encoded lines wait in a FIFO queue until the transport has room for them;
// the source is not read again until the queue is empty. The finished
// observers run exactly once, with nil on success, ErrAborted after Abort,
// or the read or write error that stopped the upload.
type Encoder struct {
	src       io.ReadCloser
	transport Transport
	logger    logging.Logger
	lineWidth int

	writeMu sync.Mutex
	mu      sync.Mutex
	queue   []string
	aborted bool
	started bool

	wake        chan struct{}
	transferred atomic.Int64
	progress    *notify.Coalescer[int64]
	progressObs notify.List[int64]
	finishedObs notify.List[error]

	closeSrc   sync.Once
	finishOnce sync.Once
	done       chan struct{}
	err        error
}

// New prepares an upload of src with the given metadata. Nothing is read or
// written before Start. The Encoder takes ownership of src and closes it
// when the upload ends.
//
// Metadata is sent as JSON, so keys and values must be UTF-8; invalid bytes
// arrive as U+FFFD.
func New(src io.ReadCloser, t Transport, metadata map[string]string, opts ...Option) (*Encoder, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	header, err := metadataSection(metadata, o.lineWidth)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		src:       src,
		transport: t,
		logger:    o.logger,
		lineWidth: o.lineWidth,
		queue:     header,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	e.progress = notify.NewCoalescer(o.progressInterval, e.progressObs.Emit)
	return e, nil
}

// OnProgress registers fn for the number of source bytes consumed so far.
// Calls are coalesced; the final count is delivered before finish.
func (e *Encoder) OnProgress(fn func(transferred int64)) (cancel func()) {
	return e.progressObs.Add(fn)
}

// OnFinished registers fn to be called once when the upload ends.
func (e *Encoder) OnFinished(fn func(err error)) (cancel func()) {
	return e.finishedObs.Add(fn)
}

// Done is closed when the upload has ended.
func (e *Encoder) Done() <-chan struct{} {
	return e.done
}

// Err returns the result of a finished upload. It is nil while running.
func (e *Encoder) Err() error {
	select {
	case <-e.done:
		return e.err
	default:
		return nil
	}
}

// BytesTransferred returns the number of source bytes consumed so far.
func (e *Encoder) BytesTransferred() int64 {
	return e.transferred.Load()
}

// Start launches the pump goroutine. Cancelling ctx aborts the upload with
// ctx's error. Start may be called only once.
func (e *Encoder) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started || e.aborted {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	cancelBudget := e.transport.OnAvailableWriteBufferSizeChange(func(BufferSizeChange) {
		e.signal()
	})

	go func() {
		defer cancelBudget()
		e.run(ctx)
	}()
}

// Abort stops the upload at once. Queued text is discarded, the source is
// closed and finished fires with ErrAborted. The envelope is left incomplete.
func (e *Encoder) Abort() {
	e.mu.Lock()
	if e.aborted {
		e.mu.Unlock()
		return
	}
	select {
	case <-e.done:
		e.mu.Unlock()
		return
	default:
	}
	e.aborted = true
	e.queue = nil
	e.mu.Unlock()

	// Wait for a chunk already handed to the transport.
	e.writeMu.Lock()
	e.writeMu.Unlock()

	e.closeSource()
	e.signal()
	e.finish(ErrAborted)
}

func (e *Encoder) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Encoder) isAborted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aborted
}

func (e *Encoder) run(ctx context.Context) {
	bytesPerLine := e.lineWidth / 4 * 3
	buf := make([]byte, bytesPerLine*linesPerRead)
	var carry []byte
	eof := false

	for {
		if e.isAborted() {
			return
		}

		drained, err := e.drain()
		if err != nil {
			e.fail(ctx, "transport write failed", err)
			return
		}
		if !drained {
			select {
			case <-e.wake:
			case <-ctx.Done():
				e.stop(ctx.Err())
				return
			}
			continue
		}

		if eof {
			e.closeSource()
			e.finish(nil)
			return
		}

		n, err := e.read(ctx, buf)
		if n > 0 {
			total := e.transferred.Add(int64(n))
			e.progress.Publish(total)

			carry = append(carry, buf[:n]...)
			full := len(carry) / bytesPerLine * bytesPerLine
			e.enqueueLines(carry[:full], bytesPerLine)
			carry = append(carry[:0], carry[full:]...)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			eof = true
			if len(carry) > 0 {
				e.enqueue(frameLine(carry))
				carry = nil
			}
			e.enqueue(sectionEnd)
		case e.isAborted():
			return
		case ctx.Err() != nil:
			e.stop(ctx.Err())
			return
		default:
			e.fail(ctx, "upload source read failed", err)
			return
		}
	}
}

func (e *Encoder) read(ctx context.Context, p []byte) (int, error) {
	if cr, ok := e.src.(contextReader); ok {
		return cr.ReadContext(ctx, p)
	}
	return e.src.Read(p)
}

// drain writes queued chunks while they fit the transport budget. It reports
// whether the queue is empty.
func (e *Encoder) drain() (bool, error) {
	for {
		done, err := e.writeNext()
		if done || err != nil {
			return e.queueEmpty(), err
		}
	}
}

// writeNext hands the head of the queue to the transport. It reports done
// when nothing was written: the queue is empty, the chunk does not fit the
// budget, or the upload was aborted. writeMu is held across the abort check
// and the write so that Abort returns only after an in-flight write.
func (e *Encoder) writeNext() (bool, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.mu.Lock()
	if e.aborted || len(e.queue) == 0 {
		e.mu.Unlock()
		return true, nil
	}
	chunk := e.queue[0]
	e.mu.Unlock()

	if len(chunk) > e.transport.AvailableWriteBufferSize() {
		return true, nil
	}
	if err := e.transport.Write(chunk); err != nil {
		return true, err
	}

	e.mu.Lock()
	if len(e.queue) > 0 {
		e.queue = e.queue[1:]
	}
	e.mu.Unlock()
	return false, nil
}

func (e *Encoder) queueEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.aborted && len(e.queue) == 0
}

func (e *Encoder) enqueueLines(b []byte, bytesPerLine int) {
	for len(b) > 0 {
		e.enqueue(frameLine(b[:bytesPerLine]))
		b = b[bytesPerLine:]
	}
}

func (e *Encoder) enqueue(chunk string) {
	e.mu.Lock()
	if !e.aborted {
		e.queue = append(e.queue, chunk)
	}
	e.mu.Unlock()
}

// fail ends the upload after an I/O error.
func (e *Encoder) fail(ctx context.Context, msg string, err error) {
	e.logger.Warn(ctx, msg, "error", err, "transferred", e.transferred.Load())
	e.stop(err)
}

func (e *Encoder) stop(err error) {
	e.mu.Lock()
	e.queue = nil
	e.mu.Unlock()

	e.closeSource()
	e.finish(err)
}

func (e *Encoder) closeSource() {
	e.closeSrc.Do(func() {
		if err := e.src.Close(); err != nil {
			e.logger.Debug(context.Background(), "close upload source", "error", err)
		}
	})
}

func (e *Encoder) finish(err error) {
	e.finishOnce.Do(func() {
		e.err = err
		e.progress.Flush()
		e.progress.Stop()
		e.finishedObs.Emit(err)
		close(e.done)
	})
}

// Package transport provides flow-controlled text transports for uploads.
//
// A Transport hands each written chunk to a background sender and debits its
// size from a fixed budget. The budget is credited back once the sender has
// delivered the chunk, and listeners are told about the change.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophterm/internal/common"
	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/dmitrijs2005/gophterm/internal/notify"
	"github.com/dmitrijs2005/gophterm/internal/upload"
)

var ErrBudgetExceeded = errors.New("transport: write exceeds available buffer")

// SendFunc delivers one chunk to the peer.
type SendFunc func(text string) error

// Transport implements upload.Transport on top of a SendFunc.
type Transport struct {
	send   SendFunc
	total  int
	logger logging.Logger

	mu        sync.Mutex
	available int
	pending   []string
	closed    bool
	err       error

	wake      chan struct{}
	stopped   chan struct{}
	listeners notify.List[upload.BufferSizeChange]
}

var _ upload.Transport = (*Transport)(nil)

// New starts a Transport with a budget of size bytes.
func New(send SendFunc, size int, logger logging.Logger) *Transport {
	if logger == nil {
		logger = logging.Nop()
	}
	t := &Transport{
		send:      send,
		total:     size,
		logger:    logger,
		available: size,
		wake:      make(chan struct{}, 1),
		stopped:   make(chan struct{}),
	}
	go t.loop()
	return t
}

// NewBuffered returns a Transport writing to w, e.g. a PTY or stdout.
func NewBuffered(w io.Writer, size int, logger logging.Logger) *Transport {
	return New(func(text string) error {
		_, err := io.WriteString(w, text)
		return err
	}, size, logger)
}

// Write queues text for delivery. It fails with ErrBudgetExceeded when text
// is longer than the available budget, and with the first delivery error
// once one has happened.
func (t *Transport) Write(text string) error {
	t.mu.Lock()
	switch {
	case t.closed:
		t.mu.Unlock()
		return fmt.Errorf("transport: %w", common.ErrorClosed)
	case t.err != nil:
		err := t.err
		t.mu.Unlock()
		return err
	case len(text) > t.available:
		t.mu.Unlock()
		return fmt.Errorf("%w: %d > %d", ErrBudgetExceeded, len(text), t.available)
	}
	t.available -= len(text)
	t.pending = append(t.pending, text)
	t.mu.Unlock()

	t.listeners.Emit(upload.BufferSizeChange{TotalBufferSize: t.total, AvailableDelta: -len(text)})

	select {
	case t.wake <- struct{}{}:
	default:
	}
	return nil
}

func (t *Transport) AvailableWriteBufferSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.available
}

func (t *Transport) TotalBufferSize() int {
	return t.total
}

func (t *Transport) OnAvailableWriteBufferSizeChange(fn func(upload.BufferSizeChange)) (cancel func()) {
	return t.listeners.Add(fn)
}

// Err returns the first delivery error, if any.
func (t *Transport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Transport) loop() {
	defer close(t.stopped)

	for range t.wake {
		for {
			t.mu.Lock()
			if len(t.pending) == 0 {
				closed := t.closed
				t.mu.Unlock()
				if closed {
					return
				}
				break
			}
			text := t.pending[0]
			t.pending = t.pending[1:]
			failed := t.err != nil
			t.mu.Unlock()

			if !failed {
				if err := t.send(text); err != nil {
					t.logger.Error(context.Background(), "transport send failed", "error", err)
					t.mu.Lock()
					t.err = fmt.Errorf("transport send: %w", err)
					t.mu.Unlock()
				}
			}

			t.mu.Lock()
			t.available += len(text)
			t.mu.Unlock()
			t.listeners.Emit(upload.BufferSizeChange{TotalBufferSize: t.total, AvailableDelta: len(text)})
		}
	}
}

// Close delivers what is still pending and stops the sender goroutine.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.stopped
		return t.Err()
	}
	t.closed = true
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
	<-t.stopped
	return t.Err()
}

package notify

import (
	"sync"
	"time"
)

// Coalescer publishes the most recent value at most once per interval.
//
// The first Publish after a quiet period is delivered immediately. Values
// published within the interval replace each other and the latest one is
// delivered when the interval expires, so the final value is never lost.
// Flush delivers a pending value right away.
//
// emit is never called concurrently with itself and must not call back into
// the Coalescer.
type Coalescer[T any] struct {
	mu       sync.Mutex
	emitMu   sync.Mutex
	interval time.Duration
	emit     func(T)

	last    time.Time
	value   T
	pending bool
	seq     uint64
	timer   *time.Timer
	stopped bool
}

// NewCoalescer returns a Coalescer delivering values to emit.
func NewCoalescer[T any](interval time.Duration, emit func(T)) *Coalescer[T] {
	return &Coalescer[T]{interval: interval, emit: emit}
}

// Publish records v as the latest value.
func (c *Coalescer[T]) Publish(v T) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	c.value = v
	elapsed := time.Since(c.last)
	if elapsed >= c.interval && c.timer == nil {
		c.last = time.Now()
		c.pending = false
		c.mu.Unlock()
		c.deliver(v)
		return
	}

	c.pending = true
	if c.timer == nil {
		c.seq++
		seq := c.seq
		c.timer = time.AfterFunc(c.interval-elapsed, func() { c.fire(seq) })
	}
	c.mu.Unlock()
}

func (c *Coalescer[T]) fire(seq uint64) {
	// emitMu first so a concurrent Flush cannot deliver an older value after us.
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.seq != seq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if !c.pending || c.stopped {
		c.mu.Unlock()
		return
	}
	c.pending = false
	c.last = time.Now()
	v := c.value
	c.mu.Unlock()

	c.emit(v)
}

func (c *Coalescer[T]) deliver(v T) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.emit(v)
}

// Flush delivers the pending value, if any, before returning.
func (c *Coalescer[T]) Flush() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
		c.seq++
	}
	if !c.pending || c.stopped {
		c.mu.Unlock()
		return
	}
	c.pending = false
	c.last = time.Now()
	v := c.value
	c.mu.Unlock()

	c.emit(v)
}

// Stop cancels any scheduled delivery and ignores later Publish calls.
func (c *Coalescer[T]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.pending = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
		c.seq++
	}
}

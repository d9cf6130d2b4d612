// Package notify provides the observer primitives shared by the staging and
// upload layers: a subscriber list whose registrations return a cancel
// function, and a Coalescer that publishes the latest value at most once per
// interval.
package notify

import "sync"

type entry[T any] struct {
	id uint64
	fn func(T)
}

// List is a set of callbacks invoked in registration order.
//
// Thread-safety: all methods are safe for concurrent use. Callbacks run on the
// goroutine calling Emit, outside the list's lock, so a callback may cancel
// itself or register new observers.
type List[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []entry[T]
}

// Add registers fn and returns a function removing it. Calling the returned
// function more than once is a no-op.
func (l *List[T]) Add(fn func(T)) (cancel func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, entry[T]{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *List[T]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.subs {
		if e.id == id {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return
		}
	}
}

// Emit calls every registered callback with v.
func (l *List[T]) Emit(v T) {
	l.mu.Lock()
	snapshot := make([]func(T), len(l.subs))
	for i, e := range l.subs {
		snapshot[i] = e.fn
	}
	l.mu.Unlock()

	for _, fn := range snapshot {
		fn(v)
	}
}

// Len returns the number of registered callbacks.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Clear drops every registration.
func (l *List[T]) Clear() {
	l.mu.Lock()
	l.subs = nil
	l.mu.Unlock()
}

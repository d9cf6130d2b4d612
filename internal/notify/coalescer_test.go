package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	vals []int
}

func (r *recorder) add(v int) {
	r.mu.Lock()
	r.vals = append(r.vals, v)
	r.mu.Unlock()
}

func (r *recorder) get() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.vals...)
}

func TestCoalescer_LeadingThenLatest(t *testing.T) {
	var r recorder
	c := NewCoalescer(50*time.Millisecond, r.add)

	c.Publish(1)
	assert.Equal(t, []int{1}, r.get(), "first value is delivered immediately")

	c.Publish(2)
	c.Publish(3)
	c.Publish(4)
	assert.Equal(t, []int{1}, r.get())

	require.Eventually(t, func() bool {
		return len(r.get()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{1, 4}, r.get())
}

func TestCoalescer_Flush(t *testing.T) {
	var r recorder
	c := NewCoalescer(time.Hour, r.add)

	c.Publish(1)
	c.Publish(2)
	c.Flush()
	assert.Equal(t, []int{1, 2}, r.get())

	// nothing pending
	c.Flush()
	assert.Equal(t, []int{1, 2}, r.get())
}

func TestCoalescer_Stop(t *testing.T) {
	var r recorder
	c := NewCoalescer(20*time.Millisecond, r.add)

	c.Publish(1)
	c.Publish(2)
	c.Stop()
	c.Publish(3)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []int{1}, r.get())
}

package transport

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophterm/internal/common"
	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/dmitrijs2005/gophterm/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTransport_BudgetAccounting(t *testing.T) {
	release := make(chan struct{})
	var sent []string
	var mu sync.Mutex

	tr := New(func(text string) error {
		<-release
		mu.Lock()
		sent = append(sent, text)
		mu.Unlock()
		return nil
	}, 10, logging.Nop())
	defer tr.Close()

	var deltas []int
	var dmu sync.Mutex
	tr.OnAvailableWriteBufferSizeChange(func(c upload.BufferSizeChange) {
		assert.Equal(t, 10, c.TotalBufferSize)
		dmu.Lock()
		deltas = append(deltas, c.AvailableDelta)
		dmu.Unlock()
	})

	require.NoError(t, tr.Write("abc"))
	assert.Equal(t, 7, tr.AvailableWriteBufferSize())

	err := tr.Write("12345678")
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, 7, tr.AvailableWriteBufferSize())

	close(release)
	require.Eventually(t, func() bool {
		return tr.AvailableWriteBufferSize() == 10
	}, time.Second, time.Millisecond)

	require.NoError(t, tr.Write("12345678"))
	require.NoError(t, tr.Close())

	mu.Lock()
	assert.Equal(t, []string{"abc", "12345678"}, sent)
	mu.Unlock()

	dmu.Lock()
	assert.ElementsMatch(t, []int{-3, 3, -8, 8}, deltas)
	dmu.Unlock()
}

func TestTransport_CloseFlushes(t *testing.T) {
	var out lockedBuffer
	tr := NewBuffered(&out, 64, logging.Nop())

	for _, s := range []string{"one ", "two ", "three"} {
		require.NoError(t, tr.Write(s))
	}
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	assert.Equal(t, "one two three", out.String())
	assert.ErrorIs(t, tr.Write("x"), common.ErrorClosed)
}

func TestTransport_SendErrorIsSticky(t *testing.T) {
	boom := errors.New("pipe closed")
	tr := New(func(string) error { return boom }, 16, logging.Nop())

	require.NoError(t, tr.Write("a"))
	require.Eventually(t, func() bool { return tr.Err() != nil }, time.Second, time.Millisecond)

	assert.ErrorIs(t, tr.Write("b"), boom)
	assert.Equal(t, 16, tr.AvailableWriteBufferSize(), "budget is credited back after a failed send")
	assert.ErrorIs(t, tr.Close(), boom)
}

func TestTransport_CarriesUpload(t *testing.T) {
	var out lockedBuffer
	tr := NewBuffered(&out, 128, logging.Nop())

	payload := bytes.Repeat([]byte("payload-"), 500)
	e, err := upload.New(nopCloser{bytes.NewReader(payload)}, tr, map[string]string{"filename": "p.bin"})
	require.NoError(t, err)
	e.Start(context.Background())

	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("upload did not finish")
	}
	require.NoError(t, e.Err())
	require.NoError(t, tr.Close())

	meta, body, err := upload.Decode(strings.NewReader(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "p.bin", meta["filename"])
	assert.Equal(t, payload, body)
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophterm/internal/common"
	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "stage"), logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newStore(t)

	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	f, err := s.Create(map[string]string{"filename": "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, s.Dir(), filepath.Dir(f.Path()))

	got, err := s.Get(f.ID())
	require.NoError(t, err)
	assert.Same(t, f, got)
	assert.Equal(t, 1, s.Len())

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStore_ReleasesFinishedFileAtZeroRefs(t *testing.T) {
	s := newStore(t)
	f, err := s.Create(nil)
	require.NoError(t, err)
	path := f.Path()

	_, err = f.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, f.SetSuccess(true))

	f.Ref()
	assert.Equal(t, 1, s.Len())
	f.Deref()

	assert.True(t, f.Disposed())
	assert.Zero(t, s.Len())
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_KeepsDownloadingFile(t *testing.T) {
	s := newStore(t)
	f, err := s.Create(nil)
	require.NoError(t, err)

	f.Ref()
	f.Deref()

	assert.False(t, f.Disposed())
	assert.Equal(t, 1, s.Len())
	_, err = os.Stat(f.Path())
	assert.NoError(t, err)
}

func TestStore_ReleasesFileFinishedAfterLastDeref(t *testing.T) {
	for _, success := range []bool{true, false} {
		s := newStore(t)
		f, err := s.Create(nil)
		require.NoError(t, err)
		path := f.Path()

		f.Ref()
		f.Deref()
		_, err = f.Write([]byte("abc"))
		require.NoError(t, err)
		require.NoError(t, f.SetSuccess(success))

		assert.True(t, f.Disposed(), "success=%v", success)
		assert.Zero(t, s.Len())
		_, err = os.Stat(path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	}
}

func TestStore_KeepsFinishedFileWhileReferenced(t *testing.T) {
	s := newStore(t)
	f, err := s.Create(nil)
	require.NoError(t, err)

	f.Ref()
	require.NoError(t, f.SetSuccess(true))
	assert.False(t, f.Disposed())
	assert.Equal(t, 1, s.Len())

	f.Deref()
	assert.True(t, f.Disposed())
	assert.Zero(t, s.Len())
}

func TestStore_KeepsUnreferencedFinishedFile(t *testing.T) {
	s := newStore(t)
	f, err := s.Create(nil)
	require.NoError(t, err)
	require.NoError(t, f.SetSuccess(true))

	assert.False(t, f.Disposed())
	assert.Equal(t, 1, s.Len())
}

func TestStore_Close(t *testing.T) {
	s, err := NewStore(t.TempDir(), logging.Nop())
	require.NoError(t, err)

	a, err := s.Create(nil)
	require.NoError(t, err)
	b, err := s.Create(nil)
	require.NoError(t, err)
	require.NoError(t, b.SetSuccess(true))
	paths := []string{a.Path(), b.Path()}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.True(t, a.Disposed())
	assert.True(t, b.Disposed())
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.ErrorIs(t, err, os.ErrNotExist)
	}

	_, err = s.Create(nil)
	assert.ErrorIs(t, err, common.ErrorClosed)
}

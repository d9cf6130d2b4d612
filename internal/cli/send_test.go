package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophterm/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_ThenDecode(t *testing.T) {
	src := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("Hello, world!"), 0o600))

	sender := newTestApp(t, "")
	require.NoError(t, sender.Run(context.Background(), []string{"send", src}))

	envelope := sender.out.String()
	meta, body, err := upload.Decode(sender.out)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", string(body))
	assert.Equal(t, "hello.txt", meta["filename"])
	assert.Equal(t, "13", meta["filesize"])
	assert.Empty(t, sender.errOut.String(), "no progress without a terminal")

	out := filepath.Join(t.TempDir(), "decoded")
	decoder := newTestApp(t, envelope)
	require.NoError(t, decoder.Run(context.Background(), []string{"decode", "-o", out}))

	assert.Contains(t, decoder.out.String(), "filename=hello.txt\n")
	assert.Contains(t, decoder.out.String(), "body: 13 B\n")
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", string(got))
}

func TestSend_NonUTF8NameRoundTrips(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bad\xffname.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))

	a := newTestApp(t, "")
	require.NoError(t, a.Run(context.Background(), []string{"send", src}))

	meta, body, err := upload.Decode(a.out)
	require.NoError(t, err)
	assert.Equal(t, "bad_name.txt", meta["filename"])
	assert.Equal(t, "x", string(body))
}

func TestUploadName(t *testing.T) {
	assert.Equal(t, "photo.png", uploadName("/tmp/dir/photo.png"))
	assert.Equal(t, "résumé.pdf", uploadName("résumé.pdf"))
	assert.Equal(t, "a_b", uploadName("/x/a\xfe\xffb"))
}

func TestSend_ProgressOnTerminal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(src, make([]byte, 4096), 0o600))

	a := newTestApp(t, "")
	a.isTerminal = func() bool { return true }
	require.NoError(t, a.Run(context.Background(), []string{"send", src}))

	assert.Contains(t, a.errOut.String(), "(100%)")
}

func TestSend_MissingFile(t *testing.T) {
	a := newTestApp(t, "")
	err := a.Run(context.Background(), []string{"send", filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, a.out.String())
}

func TestDecode_Malformed(t *testing.T) {
	a := newTestApp(t, "not an envelope\n")
	err := a.Run(context.Background(), []string{"decode"})
	assert.ErrorIs(t, err, upload.ErrMalformedEnvelope)
}

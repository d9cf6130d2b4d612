package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"wrong header", "#meta\n#\n#body\n#\n"},
		{"unterminated metadata", "#metadata\n#e30=\n"},
		{"missing body", "#metadata\n#e30=\n#\n"},
		{"bad base64", "#metadata\n#e30=\n#\n#body\n#!!!!\n#\n"},
		{"line without prefix", "#metadata\ne30=\n#\n#body\n#\n"},
		{"metadata not json", "#metadata\n#bm90IGpzb24=\n#\n#body\n#\n"},
		{"unterminated body", "#metadata\n#e30=\n#\n#body\n#YWJj\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, ErrMalformedEnvelope)
		})
	}
}

func TestDecode_MultiLineMetadata(t *testing.T) {
	chunks, err := metadataSection(map[string]string{
		"filename": "a-rather-long-file-name-that-needs-wrapping.txt",
		"filesize": "123456",
	}, 8)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 5)

	in := strings.Join(chunks, "") + "#YWJj\n#\n"
	meta, body, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "a-rather-long-file-name-that-needs-wrapping.txt", meta["filename"])
	assert.Equal(t, "123456", meta["filesize"])
	assert.Equal(t, "abc", string(body))
}

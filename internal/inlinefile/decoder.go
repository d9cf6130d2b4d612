// Package inlinefile decodes iTerm2 inline file announcements,
// OSC 1337 ; File=[key=value;...] : <base64>, and accumulates their payload.
package inlinefile

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/dmitrijs2005/gophterm/internal/vtparams"
)

const (
	// MaxFileSize is the largest payload accepted, in decoded bytes.
	MaxFileSize = 128 << 20

	// ChunkSize is the number of base64 code points stored per chunk. It is
	// a multiple of 4 so that every full chunk decodes on its own.
	ChunkSize = 256 * 1024

	marker = "File="
)

// maxEncodedLen is the base64 length of MaxFileSize bytes.
var maxEncodedLen = base64.StdEncoding.EncodedLen(MaxFileSize)

var (
	ErrNotInlineFile = errors.New("inlinefile: not a File= announcement")
	ErrBadChunk      = errors.New("inlinefile: chunk index out of range")
)

// Announcement holds the recognised keys of a File= sequence.
type Announcement struct {
	Name                string
	Size                int64
	Width               string
	Height              string
	PreserveAspectRatio bool
	Inline              bool
}

// Decoder accumulates the base64 payload that follows an announcement.
//
// Payload code points are stored in fixed ChunkSize chunks so a large
// transfer never needs one huge allocation. Once the payload would exceed the
// encoded size of MaxFileSize, AppendPayloadCodePoint returns false and the
// caller should drop the sequence.
type Decoder struct {
	Announcement

	chunks    [][]byte
	total     int
	overflown bool
}

// Parse reads an announcement from p. Parameter 0 is the OSC command number;
// parameter 1 must start with "File=". Unknown keys and malformed values are
// logged and otherwise ignored.
func Parse(ctx context.Context, p vtparams.Params, logger logging.Logger) (*Decoder, error) {
	first, ok := strings.CutPrefix(p.ParameterString(1), marker)
	if !ok {
		return nil, ErrNotInlineFile
	}

	d := &Decoder{Announcement: Announcement{Size: -1, PreserveAspectRatio: true}}

	fields := []string{first}
	for i := 2; i < p.ParamCount(); i++ {
		fields = append(fields, p.ParameterString(i))
	}

	for _, f := range fields {
		if f == "" {
			continue
		}
		key, value, found := strings.Cut(f, "=")
		if !found {
			logger.Warn(ctx, "inline file: field without value", "field", f)
			continue
		}
		d.apply(ctx, logger, key, value)
	}

	return d, nil
}

func (d *Decoder) apply(ctx context.Context, logger logging.Logger, key, value string) {
	switch key {
	case "name":
		// Plain names such as "data" are valid base64 too; only accept a
		// decoding that yields UTF-8 text.
		if b, err := base64.StdEncoding.DecodeString(value); err == nil && utf8.Valid(b) {
			d.Name = string(b)
		} else {
			d.Name = value
		}
	case "size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 || n > MaxFileSize {
			logger.Warn(ctx, "inline file: invalid size", "value", value)
			d.Size = -1
			return
		}
		d.Size = n
	case "width":
		d.Width = value
	case "height":
		d.Height = value
	case "preserveAspectRatio":
		switch value {
		case "0":
			d.PreserveAspectRatio = false
		case "1":
			d.PreserveAspectRatio = true
		default:
			logger.Warn(ctx, "inline file: invalid preserveAspectRatio", "value", value)
		}
	case "inline":
		d.Inline = value == "1"
	default:
		logger.Warn(ctx, "inline file: unknown key", "key", key)
	}
}

// ExpectedPayloadLength returns the announced size in bytes, or -1 when it
// was missing or invalid.
func (d *Decoder) ExpectedPayloadLength() int64 {
	return d.Size
}

// AppendPayloadCodePoint adds one base64 code point to the payload. CR and
// LF are skipped. It returns false once the payload is too large.
func (d *Decoder) AppendPayloadCodePoint(r rune) bool {
	if r == '\r' || r == '\n' {
		return !d.overflown
	}
	if d.overflown || d.total >= maxEncodedLen {
		d.overflown = true
		return false
	}

	n := len(d.chunks)
	if n == 0 || len(d.chunks[n-1]) == ChunkSize {
		d.chunks = append(d.chunks, make([]byte, 0, ChunkSize))
		n++
	}

	// Non-ASCII input cannot be base64; keep a byte that fails decoding.
	b := byte(0xff)
	if r < 0x80 {
		b = byte(r)
	}
	d.chunks[n-1] = append(d.chunks[n-1], b)
	d.total++
	return true
}

// EncodedLen returns the number of payload code points accepted so far.
func (d *Decoder) EncodedLen() int {
	return d.total
}

// CompletedChunks returns how many leading chunks are full. Full chunks never
// change again and can be decoded while the payload is still arriving.
func (d *Decoder) CompletedChunks() int {
	n := len(d.chunks)
	if n > 0 && len(d.chunks[n-1]) < ChunkSize {
		n--
	}
	return n
}

// ChunkCount returns the number of chunks, including a partial last one.
func (d *Decoder) ChunkCount() int {
	return len(d.chunks)
}

// DecodeChunk decodes chunk i on its own.
func (d *Decoder) DecodeChunk(i int) ([]byte, error) {
	if i < 0 || i >= len(d.chunks) {
		return nil, fmt.Errorf("%w: %d", ErrBadChunk, i)
	}

	src := d.chunks[i]
	for len(src) > 0 && src[len(src)-1] == '=' {
		src = src[:len(src)-1]
	}

	out := make([]byte, base64.RawStdEncoding.DecodedLen(len(src)))
	n, err := base64.RawStdEncoding.Decode(out, src)
	if err != nil {
		return nil, fmt.Errorf("decode chunk %d: %w", i, err)
	}
	return out[:n], nil
}

// Payload decodes the whole payload chunk by chunk.
func (d *Decoder) Payload() ([]byte, error) {
	out := make([]byte, 0, base64.StdEncoding.DecodedLen(d.total))
	for i := range d.chunks {
		b, err := d.DecodeChunk(i)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Metadata renders the announcement as bulk file metadata.
func (d *Decoder) Metadata() map[string]string {
	m := map[string]string{
		"preserveAspectRatio": boolString(d.PreserveAspectRatio),
		"inline":              boolString(d.Inline),
	}
	if d.Name != "" {
		m["filename"] = d.Name
	}
	if d.Size >= 0 {
		m["filesize"] = strconv.FormatInt(d.Size, 10)
	}
	if d.Width != "" {
		m["width"] = d.Width
	}
	if d.Height != "" {
		m["height"] = d.Height
	}
	return m
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophterm/internal/inlinefile"
	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/dmitrijs2005/gophterm/internal/staging"
	"github.com/dmitrijs2005/gophterm/internal/vtparams"
)

var ErrPayloadRejected = errors.New("session: inline file payload rejected")

// Download is an inline file transfer in progress. Completed payload chunks
// are decoded and written to the staged file while the payload arrives.
type Download struct {
	dec    *inlinefile.Decoder
	file   *staging.File
	logger logging.Logger

	flushed int
	written int64
	err     error
	ended   bool
}

// DispatchOSC starts a download for OSC 1337 ; File=... . Other commands
// return ErrNotHandled.
func (s *Session) DispatchOSC(ctx context.Context, p *vtparams.Scanner) (*Download, error) {
	if p.ParamCount() == 0 || p.ParameterString(0) != strconv.Itoa(oscInlineFile) {
		return nil, ErrNotHandled
	}

	dec, err := inlinefile.Parse(ctx, p, s.logger)
	if err != nil {
		return nil, err
	}

	f, err := s.store.Create(dec.Metadata())
	if err != nil {
		return nil, fmt.Errorf("stage download: %w", err)
	}

	s.logger.Info(ctx, "inline file download started",
		"file", f.ID(), "name", dec.Name, "size", dec.ExpectedPayloadLength())
	s.downloads.Emit(f)

	return &Download{dec: dec, file: f, logger: s.logger.With("file", f.ID())}, nil
}

// FeedOSC handles a complete OSC body such as
// "1337;File=name=YS50eHQ=;size=3:QUJD" and returns the finished download.
func (s *Session) FeedOSC(ctx context.Context, body string) (*Download, error) {
	header, payload, _ := strings.Cut(body, ":")

	var p vtparams.Scanner
	for _, field := range strings.Split(header, ";") {
		if !p.AppendParameter(field) {
			return nil, fmt.Errorf("%w: parameter too long", ErrPayloadRejected)
		}
	}

	d, err := s.DispatchOSC(ctx, &p)
	if err != nil {
		return nil, err
	}

	for _, r := range payload {
		if !d.AppendPayloadCodePoint(r) {
			return d, errors.Join(ErrPayloadRejected, d.End(false))
		}
	}
	return d, d.End(true)
}

func (d *Download) File() *staging.File { return d.file }

// Announcement returns the parsed File= keys.
func (d *Download) Announcement() inlinefile.Announcement { return d.dec.Announcement }

// AppendPayloadCodePoint feeds one payload code point. It returns false when
// the payload is too large or a chunk could not be decoded or staged; the
// caller should then drop the sequence and call End(false).
func (d *Download) AppendPayloadCodePoint(r rune) bool {
	if d.err != nil || d.ended {
		return false
	}
	if !d.dec.AppendPayloadCodePoint(r) {
		d.err = ErrPayloadRejected
		return false
	}
	return d.flush(d.dec.CompletedChunks())
}

// flush writes decoded chunks up to, not including, chunk upto.
func (d *Download) flush(upto int) bool {
	for d.flushed < upto {
		b, err := d.dec.DecodeChunk(d.flushed)
		if err == nil {
			_, err = d.file.Write(b)
		}
		if err != nil {
			d.err = err
			return false
		}
		d.written += int64(len(b))
		d.flushed++
	}
	return true
}

// End finishes the transfer. With ok set the remaining payload is staged and
// the file is marked completed; otherwise, or if staging failed, it is marked
// failed.
func (d *Download) End(ok bool) error {
	if d.ended {
		return staging.ErrAlreadySignalled
	}
	d.ended = true

	if ok && d.err == nil {
		d.flush(d.dec.ChunkCount())
	}
	ok = ok && d.err == nil

	if want := d.dec.ExpectedPayloadLength(); ok && want >= 0 && want != d.written {
		d.logger.Warn(context.Background(), "inline file size mismatch", "declared", want, "received", d.written)
	}

	err := d.file.SetSuccess(ok)
	if d.err != nil && !errors.Is(d.err, ErrPayloadRejected) {
		return errors.Join(d.err, err)
	}
	return err
}

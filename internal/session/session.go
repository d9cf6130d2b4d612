// Package session connects parsed control sequences to the mouse encoder,
// the staging store and the upload encoder for one terminal.
//
// The caller owns the vtparams.Scanner it fills for each sequence and passes
// it to DispatchCSI or DispatchOSC once the final byte is known.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/dmitrijs2005/gophterm/internal/mouse"
	"github.com/dmitrijs2005/gophterm/internal/notify"
	"github.com/dmitrijs2005/gophterm/internal/staging"
	"github.com/dmitrijs2005/gophterm/internal/upload"
	"github.com/dmitrijs2005/gophterm/internal/vtparams"
)

// alternateScrollMode (DECSET 1007) reports the wheel as cursor keys.
const alternateScrollMode = 1007

// oscInlineFile is the OSC command number of iTerm2 inline files.
const oscInlineFile = 1337

var ErrNotHandled = errors.New("session: sequence not handled")

type Options struct {
	WheelAsCursorKeys bool
	WheelRepeat       int
	LineWidth         int
	ProgressInterval  time.Duration
}

// Session is the per-terminal dispatch state. Its methods are meant to be
// called from the goroutine that parses terminal output.
type Session struct {
	store  *staging.Store
	logger logging.Logger
	opts   Options

	mouse     *mouse.Encoder
	downloads notify.List[*staging.File]
}

func New(store *staging.Store, logger logging.Logger, opts Options) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.LineWidth == 0 {
		opts.LineWidth = upload.DefaultLineWidth
	}
	if opts.ProgressInterval == 0 {
		opts.ProgressInterval = upload.DefaultProgressInterval
	}

	return &Session{
		store:  store,
		logger: logger,
		opts:   opts,
		mouse:  mouse.NewEncoder(mouse.WithWheelAsCursorKeys(opts.WheelAsCursorKeys, opts.WheelRepeat)),
	}
}

// Mouse returns the encoder reflecting the modes set so far.
func (s *Session) Mouse() *mouse.Encoder {
	return s.mouse
}

// OnDownload registers fn, called with every staged file created from an
// inline file announcement.
func (s *Session) OnDownload(fn func(*staging.File)) (cancel func()) {
	return s.downloads.Add(fn)
}

// DispatchCSI handles CSI ? Pm h and CSI ? Pm l for the mouse related private
// modes. It reports whether at least one parameter was recognised.
func (s *Session) DispatchCSI(ctx context.Context, final rune, p *vtparams.Scanner) bool {
	if p.Prefix() != "?" || (final != 'h' && final != 'l') {
		return false
	}
	set := final == 'h'

	handled := false
	for i := 0; i < p.ParamCount(); i++ {
		mode := p.ParameterInt(i)
		if s.setPrivateMode(mode, set) {
			handled = true
			continue
		}
		s.logger.Debug(ctx, "ignored private mode", "mode", mode, "set", set)
	}
	return handled
}

func (s *Session) setPrivateMode(mode int, set bool) bool {
	switch ansi.DECMode(mode) {
	case ansi.CursorKeysMode:
		s.mouse.SetApplicationCursorKeys(set)
	case ansi.X10MouseMode:
		s.setTracking(mouse.ModeX10, set)
	case ansi.NormalMouseMode:
		s.setTracking(mouse.ModeVT200, set)
	case ansi.ButtonEventMouseMode:
		s.setTracking(mouse.ModeDragEvents, set)
	case ansi.AnyEventMouseMode:
		s.setTracking(mouse.ModeAnyEvents, set)
	case ansi.SgrExtMouseMode:
		if set {
			s.mouse.SetEncoding(mouse.EncodingSGR)
		} else {
			s.mouse.SetEncoding(mouse.EncodingNormal)
		}
	case alternateScrollMode:
		s.mouse.SetWheelAsCursorKeys(set)
	default:
		return false
	}
	return true
}

// setTracking enables m, or disables tracking if m is the active mode.
func (s *Session) setTracking(m mouse.Mode, set bool) {
	switch {
	case set:
		s.mouse.SetMode(m)
	case s.mouse.Mode() == m:
		s.mouse.SetMode(mouse.ModeNone)
	}
}

// Upload streams f to t as an upload envelope. The file is referenced for
// the duration of the upload and released when the encoder finishes.
func (s *Session) Upload(ctx context.Context, f *staging.File, t upload.Transport) (*upload.Encoder, error) {
	f.Ref()

	r, err := f.NewReader()
	if err != nil {
		f.Deref()
		return nil, err
	}

	enc, err := upload.New(r, t, f.Metadata(),
		upload.WithLineWidth(s.opts.LineWidth),
		upload.WithProgressInterval(s.opts.ProgressInterval),
		upload.WithLogger(s.logger.With("upload", f.ID())),
	)
	if err != nil {
		_ = r.Close()
		f.Deref()
		return nil, err
	}

	enc.OnFinished(func(err error) {
		if err != nil {
			s.logger.Warn(context.Background(), "upload ended", "file", f.ID(), "error", err)
		}
		f.Deref()
	})
	enc.Start(ctx)
	return enc, nil
}

package mouse

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	legacyOffset = 32
	// legacyMax is the largest value a legacy report byte may carry.
	legacyMax = 127
)

// Encoder turns mouse events into reports for the active Mode and Encoding.
// It is not safe for concurrent use; a terminal session owns one.
type Encoder struct {
	mode     Mode
	encoding Encoding

	wheelAsKeys bool
	wheelRepeat int
	appCursor   bool

	lastButton ansi.MouseButton
	moved      bool
	lastRow    int
	lastCol    int
}

type Option func(*Encoder)

// WithWheelAsCursorKeys makes wheel events in modes that do not report the
// wheel produce repeat cursor up/down key sequences instead.
func WithWheelAsCursorKeys(enabled bool, repeat int) Option {
	return func(e *Encoder) {
		e.wheelAsKeys = enabled
		e.wheelRepeat = repeat
	}
}

func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{wheelRepeat: 3}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Encoder) Mode() Mode { return e.mode }

// SetMode switches the tracking mode and forgets the last move and button.
func (e *Encoder) SetMode(m Mode) {
	e.mode = m
	e.moved = false
	e.lastButton = ansi.MouseNone
}

func (e *Encoder) Encoding() Encoding { return e.encoding }

func (e *Encoder) SetEncoding(enc Encoding) { e.encoding = enc }

func (e *Encoder) WheelAsCursorKeys() bool { return e.wheelAsKeys }

func (e *Encoder) SetWheelAsCursorKeys(enabled bool) { e.wheelAsKeys = enabled }

func (e *Encoder) SetWheelRepeat(n int) { e.wheelRepeat = max(n, 0) }

// SetApplicationCursorKeys selects SS3 (ESC O A) instead of CSI (ESC [ A)
// cursor keys for the wheel fallback.
func (e *Encoder) SetApplicationCursorKeys(enabled bool) { e.appCursor = enabled }

// Down reports a button press. The pressed button is the first of left,
// middle and right set in ev.
func (e *Encoder) Down(ev Event) (string, error) {
	if e.mode == ModeNone {
		return "", ErrUnsupported
	}
	b := pressedButton(ev)
	if b == ansi.MouseNone {
		return "", ErrNoButton
	}
	e.lastButton = b
	e.moved = false

	if e.mode == ModeX10 {
		// X10 never carries modifiers.
		ev.Shift, ev.Meta, ev.Ctrl = false, false, false
	}
	return e.report(ansi.EncodeMouseButton(b, false, ev.Shift, ev.Meta, ev.Ctrl), ev, false), nil
}

// Up reports a button release. Legacy reports use the generic release code;
// SGR reports repeat the last pressed button with a trailing m.
func (e *Encoder) Up(ev Event) (string, error) {
	if e.mode == ModeNone || e.mode == ModeX10 {
		return "", ErrUnsupported
	}
	b := e.lastButton
	e.lastButton = ansi.MouseNone
	e.moved = false

	if e.encoding == EncodingSGR {
		if b == ansi.MouseNone {
			b = pressedButton(ev)
		}
		if b == ansi.MouseNone {
			b = ansi.MouseLeft
		}
		return e.report(ansi.EncodeMouseButton(b, false, ev.Shift, ev.Meta, ev.Ctrl), ev, true), nil
	}
	return e.report(ansi.EncodeMouseButton(ansi.MouseRelease, false, ev.Shift, ev.Meta, ev.Ctrl), ev, false), nil
}

// Move reports pointer motion. A move to the cell of the previous move
// returns "" with a nil error.
func (e *Encoder) Move(ev Event) (string, error) {
	held := ev.AnyButton()
	switch {
	case e.mode == ModeAnyEvents:
	case e.mode == ModeDragEvents && held:
	default:
		return "", ErrUnsupported
	}

	if e.moved && e.lastRow == ev.Row && e.lastCol == ev.Col {
		return "", nil
	}
	e.moved = true
	e.lastRow, e.lastCol = ev.Row, ev.Col

	b := ansi.MouseNone
	if held {
		b = pressedButton(ev)
	}
	return e.report(ansi.EncodeMouseButton(b, true, ev.Shift, ev.Meta, ev.Ctrl), ev, false), nil
}

// Wheel reports one wheel notch. When the mode does not report the wheel the
// cursor key fallback is used if enabled, otherwise ErrUnsupported.
func (e *Encoder) Wheel(ev Event, dir WheelDirection) (string, error) {
	if e.mode == ModeNone || e.mode == ModeX10 {
		return e.wheelKeys(dir)
	}

	b := ansi.MouseWheelUp
	if dir == WheelDown {
		b = ansi.MouseWheelDown
	}
	return e.report(ansi.EncodeMouseButton(b, false, ev.Shift, ev.Meta, ev.Ctrl), ev, false), nil
}

func (e *Encoder) wheelKeys(dir WheelDirection) (string, error) {
	if !e.wheelAsKeys {
		return "", ErrUnsupported
	}

	var key string
	switch {
	case dir == WheelUp && e.appCursor:
		key = "\x1bOA"
	case dir == WheelUp:
		key = ansi.CUU1
	case e.appCursor:
		key = "\x1bOB"
	default:
		key = ansi.CUD1
	}
	return strings.Repeat(key, e.wheelRepeat), nil
}

func (e *Encoder) report(code byte, ev Event, release bool) string {
	row, col := max(ev.Row, 0), max(ev.Col, 0)
	if e.encoding == EncodingSGR {
		return ansi.MouseSgr(code, col, row, release)
	}
	return string([]byte{
		0x1b, '[', 'M',
		legacyByte(int(code) + legacyOffset),
		legacyByte(col + 1 + legacyOffset),
		legacyByte(row + 1 + legacyOffset),
	})
}

// legacyByte squeezes v into one report byte: 255 becomes 0 and anything
// else above 127 becomes 127.
func legacyByte(v int) byte {
	if v == 255 {
		return 0
	}
	if v > legacyMax {
		return legacyMax
	}
	return byte(v)
}

func pressedButton(ev Event) ansi.MouseButton {
	switch {
	case ev.Left:
		return ansi.MouseLeft
	case ev.Middle:
		return ansi.MouseMiddle
	case ev.Right:
		return ansi.MouseRight
	default:
		return ansi.MouseNone
	}
}

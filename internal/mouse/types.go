package mouse

import "errors"

var (
	// ErrUnsupported is returned for events the active mode does not report.
	// It differs from an empty result with a nil error, which means the
	// event was valid but redundant.
	ErrUnsupported = errors.New("mouse: event not reported in current mode")

	// ErrNoButton is returned by Down when the event has no button flag set.
	ErrNoButton = errors.New("mouse: no button in down event")
)

// Mode is the mouse tracking mode requested by the application.
type Mode int

const (
	ModeNone       Mode = iota
	ModeX10             // DECSET 9: button presses only
	ModeVT200           // DECSET 1000: presses, releases and wheel
	ModeDragEvents      // DECSET 1002: adds motion while a button is held
	ModeAnyEvents       // DECSET 1003: adds all motion
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeX10:
		return "x10"
	case ModeVT200:
		return "vt200"
	case ModeDragEvents:
		return "drag"
	case ModeAnyEvents:
		return "any"
	default:
		return "unknown"
	}
}

// Encoding selects the report wire format.
type Encoding int

const (
	EncodingNormal Encoding = iota
	EncodingSGR
)

func (e Encoding) String() string {
	if e == EncodingSGR {
		return "sgr"
	}
	return "normal"
}

// Event is a mouse event at a 0-based cell position. The button flags
// describe the buttons held down, the modifier flags the keys held.
type Event struct {
	Row, Col int

	Left, Middle, Right bool

	Shift, Ctrl, Meta bool
}

// AnyButton reports whether at least one button flag is set.
func (e Event) AnyButton() bool {
	return e.Left || e.Middle || e.Right
}

// WheelDirection is the direction of one wheel notch.
type WheelDirection int

const (
	WheelUp WheelDirection = iota
	WheelDown
)

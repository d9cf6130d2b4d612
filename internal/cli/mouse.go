package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophterm/internal/mouse"
	"github.com/spf13/cobra"
)

var ErrUnknownValue = errors.New("unknown value")

var mouseModes = []mouse.Mode{
	mouse.ModeNone,
	mouse.ModeX10,
	mouse.ModeVT200,
	mouse.ModeDragEvents,
	mouse.ModeAnyEvents,
}

func parseMode(s string) (mouse.Mode, error) {
	for _, m := range mouseModes {
		if m.String() == s {
			return m, nil
		}
	}
	return mouse.ModeNone, fmt.Errorf("mode %q: %w", s, ErrUnknownValue)
}

type mouseFlags struct {
	mode   string
	sgr    bool
	events []string
	row    int
	col    int
	button string
	shift  bool
	ctrl   bool
	meta   bool
}

func (f mouseFlags) event() (mouse.Event, error) {
	ev := mouse.Event{Row: f.row, Col: f.col, Shift: f.shift, Ctrl: f.ctrl, Meta: f.meta}
	switch f.button {
	case "left":
		ev.Left = true
	case "middle":
		ev.Middle = true
	case "right":
		ev.Right = true
	case "none":
	default:
		return ev, fmt.Errorf("button %q: %w", f.button, ErrUnknownValue)
	}
	return ev, nil
}

func (a *App) mouseCmd() *cobra.Command {
	var f mouseFlags

	cmd := &cobra.Command{
		Use:   "mouse",
		Short: "Print the reports for a sequence of mouse events",
		Long: `Encodes each --event in order (down, up, move, wheel-up, wheel-down)
and prints the resulting report quoted. Events the mode does not report
are printed as "unsupported".`,
		Example: `  gophterm mouse --mode drag --sgr --event down,move,up --row 4 --col 9`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseMode(f.mode)
			if err != nil {
				return err
			}
			ev, err := f.event()
			if err != nil {
				return err
			}

			enc := a.session.Mouse()
			enc.SetMode(mode)
			if f.sgr {
				enc.SetEncoding(mouse.EncodingSGR)
			}

			w := cmd.OutOrStdout()
			for _, name := range f.events {
				seq, err := encodeEvent(enc, strings.TrimSpace(name), ev)
				switch {
				case errors.Is(err, mouse.ErrUnsupported):
					fmt.Fprintf(w, "%s: unsupported\n", name)
				case err != nil:
					return err
				default:
					fmt.Fprintf(w, "%s: %q\n", name, seq)
				}
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.mode, "mode", mouse.ModeVT200.String(), "tracking mode: none, x10, vt200, drag or any")
	fl.BoolVar(&f.sgr, "sgr", false, "use SGR (1006) encoding")
	fl.StringSliceVar(&f.events, "event", []string{"down"}, "events to encode in order")
	fl.IntVar(&f.row, "row", 0, "0-based row")
	fl.IntVar(&f.col, "col", 0, "0-based column")
	fl.StringVar(&f.button, "button", "left", "button held: left, middle, right or none")
	fl.BoolVar(&f.shift, "shift", false, "shift held")
	fl.BoolVar(&f.ctrl, "ctrl", false, "ctrl held")
	fl.BoolVar(&f.meta, "meta", false, "meta held")
	return cmd
}

func encodeEvent(enc *mouse.Encoder, name string, ev mouse.Event) (string, error) {
	switch name {
	case "down":
		return enc.Down(ev)
	case "up":
		return enc.Up(ev)
	case "move":
		return enc.Move(ev)
	case "wheel-up":
		return enc.Wheel(ev, mouse.WheelUp)
	case "wheel-down":
		return enc.Wheel(ev, mouse.WheelDown)
	default:
		return "", fmt.Errorf("event %q: %w", name, ErrUnknownValue)
	}
}

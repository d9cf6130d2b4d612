// Package mouse encodes mouse events into xterm mouse reports.
//
// The Encoder tracks which tracking mode the application enabled (9, 1000,
// 1002 or 1003) and which encoding (legacy bytes or SGR, 1006), and turns
// down, up, move and wheel events into the bytes to send back to it.
//
// Legacy reports are ESC [ M Cb Cx Cy with every field offset by 32 and
// squeezed into a single printable byte. SGR reports are
// ESC [ < Cb ; Cx ; Cy M, or a trailing m for a release, with decimal fields.
//
// Example:
//
//	enc := mouse.NewEncoder()
//	enc.SetMode(mouse.ModeDragEvents)
//	enc.SetEncoding(mouse.EncodingSGR)
//
//	seq, err := enc.Down(mouse.Event{Row: 2, Col: 5, Left: true})
//	// seq == "\x1b[<0;6;3M"
package mouse

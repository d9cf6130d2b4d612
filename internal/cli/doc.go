// Package cli provides the gophterm command-line tool.
//
// It wires configuration, the staging store and a terminal session into a
// cobra command tree:
//   - recv:   stage an inline file from an OSC 1337 body
//   - send:   stage a local file and stream it as an upload envelope
//   - decode: turn an upload envelope back into metadata and content
//   - mouse:  print the report a terminal would send for mouse events
//
// The tree is built per App and executed via App.Run(ctx, args).
package cli

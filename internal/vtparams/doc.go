// Package vtparams holds the parameters of a single control sequence while an
// external lexer feeds them in, and gives typed access to them afterwards.
//
// A Scanner is owned by the caller and reused across sequences: Reset clears
// it without releasing the per-parameter buffers.
//
// Example:
//
//	var s vtparams.Scanner
//	_ = s.AppendPrefix('?')
//	for _, r := range "1002" {
//		s.AppendParameterCodePoint(r)
//	}
//	s.EndParameter()
//
//	s.Prefix()          // "?"
//	s.ParameterInt(0)   // 1002
//	s.DefaultInt(1, 7)  // 7, parameter 1 was never supplied
package vtparams

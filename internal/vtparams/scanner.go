package vtparams

import (
	"errors"
	"strings"
)

const (
	// ParameterCapacity is the number of code points a single parameter can
	// hold. Inline file payloads are not stored here, only their headers.
	ParameterCapacity = 1024

	// MaxPrefixLen bounds the private-marker prefix, e.g. "?" or ">".
	MaxPrefixLen = 2
)

var ErrPrefixTooLong = errors.New("vtparams: prefix too long")

// Scanner accumulates the prefix and parameters of one control sequence.
//
// A parameter being appended to is not visible through the Params methods
// until EndParameter is called. When a parameter fills up,
// AppendParameterCodePoint refuses the code point and the scanner reports
// Overflowed until the next Reset; the caller is expected to drop the whole
// sequence.
type Scanner struct {
	prefix    [MaxPrefixLen]rune
	prefixLen int

	slots      [][]rune
	count      int
	overflowed bool
}

var _ Params = (*Scanner)(nil)

// Reset clears the scanner for the next sequence, keeping allocated buffers.
func (s *Scanner) Reset() {
	s.prefixLen = 0
	s.count = 0
	s.overflowed = false
	if len(s.slots) > 0 {
		s.slots[0] = s.slots[0][:0]
	}
}

// AppendPrefix adds r to the sequence prefix.
func (s *Scanner) AppendPrefix(r rune) error {
	if s.prefixLen == MaxPrefixLen {
		return ErrPrefixTooLong
	}
	s.prefix[s.prefixLen] = r
	s.prefixLen++
	return nil
}

// Prefix returns the prefix collected so far.
func (s *Scanner) Prefix() string {
	return string(s.prefix[:s.prefixLen])
}

// current returns the buffer of the parameter under construction, allocating
// it on first use.
func (s *Scanner) current() []rune {
	if s.count == len(s.slots) {
		s.slots = append(s.slots, make([]rune, 0, ParameterCapacity))
	}
	return s.slots[s.count]
}

// AppendParameterCodePoint appends r to the parameter under construction.
// It returns false, and leaves the parameter unchanged, when the parameter is
// already at ParameterCapacity.
func (s *Scanner) AppendParameterCodePoint(r rune) bool {
	buf := s.current()
	if len(buf) == ParameterCapacity {
		s.overflowed = true
		return false
	}
	s.slots[s.count] = append(buf, r)
	return true
}

// EndParameter finishes the parameter under construction, which may be empty,
// and starts the next one.
func (s *Scanner) EndParameter() {
	s.current()
	s.count++
	if s.count < len(s.slots) {
		s.slots[s.count] = s.slots[s.count][:0]
	}
}

// AppendParameter appends every code point of v and ends the parameter.
// It stops and returns false on overflow.
func (s *Scanner) AppendParameter(v string) bool {
	for _, r := range v {
		if !s.AppendParameterCodePoint(r) {
			return false
		}
	}
	s.EndParameter()
	return true
}

// Overflowed reports whether a code point was refused since the last Reset.
func (s *Scanner) Overflowed() bool {
	return s.overflowed
}

// ParamCount returns the number of finished parameters.
func (s *Scanner) ParamCount() int {
	return s.count
}

// ParameterString returns parameter i, or "" when it was not supplied.
func (s *Scanner) ParameterString(i int) string {
	if i < 0 || i >= s.count {
		return ""
	}
	return string(s.slots[i])
}

// ParameterInt returns the leading decimal digits of parameter i as an int.
// Empty and missing parameters are 0.
func (s *Scanner) ParameterInt(i int) int {
	if i < 0 || i >= s.count {
		return 0
	}
	return parseInt(s.slots[i])
}

// DefaultInt returns def when parameter i was not supplied, and the parsed
// value otherwise, even when that value is 0.
func (s *Scanner) DefaultInt(i, def int) int {
	if i < 0 || i >= s.count {
		return def
	}
	return parseInt(s.slots[i])
}

// ExpandParameter splits parameter i on sep.
func (s *Scanner) ExpandParameter(i int, sep rune) SubParams {
	if i < 0 || i >= s.count {
		return SubParams{}
	}
	return SubParams{fields: strings.Split(string(s.slots[i]), string(sep))}
}

// String renders the sequence body for logging, e.g. "?1002;1006".
func (s *Scanner) String() string {
	var b strings.Builder
	b.WriteString(s.Prefix())
	for i := 0; i < s.count; i++ {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(string(s.slots[i]))
	}
	return b.String()
}

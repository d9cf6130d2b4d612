package vtparams

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, params ...string) *Scanner {
	t.Helper()
	var s Scanner
	for _, p := range params {
		require.True(t, s.AppendParameter(p))
	}
	return &s
}

func TestScanner_ParameterInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"1", 1},
		{"42", 42},
		{"42x", 42},
		{"007", 7},
		{"", 0},
		{"x42", 0},
		{"-5", 0},
		{"2147483647", MaxParamValue},
		{"2147483648", MaxParamValue},
		{"99999999999999999999", MaxParamValue},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s := load(t, tt.in)
			assert.Equal(t, tt.want, s.ParameterInt(0))
		})
	}
}

func TestScanner_DefaultInt(t *testing.T) {
	s := load(t, "0", "", "12")

	require.Equal(t, 3, s.ParamCount())
	assert.Equal(t, 0, s.DefaultInt(0, 9), "present and zero")
	assert.Equal(t, 0, s.DefaultInt(1, 9), "present and empty")
	assert.Equal(t, 12, s.DefaultInt(2, 9))
	assert.Equal(t, 9, s.DefaultInt(3, 9), "absent")
	assert.Equal(t, 9, s.DefaultInt(-1, 9))
}

func TestScanner_UnfinishedParameterIsInvisible(t *testing.T) {
	var s Scanner
	s.AppendParameterCodePoint('5')

	assert.Equal(t, 0, s.ParamCount())
	assert.Equal(t, "", s.ParameterString(0))
	assert.Equal(t, 3, s.DefaultInt(0, 3))

	s.EndParameter()
	assert.Equal(t, 1, s.ParamCount())
	assert.Equal(t, 5, s.ParameterInt(0))
}

func TestScanner_ExpandParameter(t *testing.T) {
	s := load(t, "38", "2:255:0:0")

	sub := s.ExpandParameter(1, ':')
	require.Equal(t, 4, sub.ParamCount())

	got := make([]int, sub.ParamCount())
	for i := range got {
		got[i] = sub.ParameterInt(i)
	}
	if diff := cmp.Diff([]int{2, 255, 0, 0}, got); diff != "" {
		t.Errorf("sub-parameters mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 7, sub.DefaultInt(4, 7))
	assert.Equal(t, "255", sub.ParameterString(1))

	single := s.ExpandParameter(0, ':')
	assert.Equal(t, 1, single.ParamCount())
	assert.Equal(t, 38, single.ParameterInt(0))

	missing := s.ExpandParameter(5, ':')
	assert.Equal(t, 0, missing.ParamCount())
}

func TestScanner_ExpandIsIndependentOfReset(t *testing.T) {
	s := load(t, "1:2")
	sub := s.ExpandParameter(0, ':')

	s.Reset()
	s.AppendParameter("9:9")

	assert.Equal(t, 1, sub.ParameterInt(0))
	assert.Equal(t, 2, sub.ParameterInt(1))
}

func TestScanner_Prefix(t *testing.T) {
	var s Scanner
	require.NoError(t, s.AppendPrefix('?'))
	require.NoError(t, s.AppendPrefix('>'))
	assert.ErrorIs(t, s.AppendPrefix('!'), ErrPrefixTooLong)
	assert.Equal(t, "?>", s.Prefix())

	s.Reset()
	assert.Equal(t, "", s.Prefix())
}

func TestScanner_ResetReusesBuffers(t *testing.T) {
	s := load(t, "123", "456")
	first := &s.slots[0][:1][0]

	s.Reset()
	assert.Equal(t, 0, s.ParamCount())
	assert.Equal(t, "", s.ParameterString(0))

	s.AppendParameter("7")
	assert.Equal(t, 1, s.ParamCount())
	assert.Equal(t, "7", s.ParameterString(0))
	assert.Same(t, first, &s.slots[0][:1][0], "slot buffer reallocated")

	// a stale second slot must not leak into the new parameter
	s.AppendParameter("")
	assert.Equal(t, "", s.ParameterString(1))
}

func TestScanner_Overflow(t *testing.T) {
	var s Scanner
	for i := 0; i < ParameterCapacity; i++ {
		require.True(t, s.AppendParameterCodePoint('1'))
	}
	assert.False(t, s.Overflowed())

	assert.False(t, s.AppendParameterCodePoint('1'))
	assert.True(t, s.Overflowed())

	s.EndParameter()
	assert.Len(t, s.ParameterString(0), ParameterCapacity)

	s.Reset()
	assert.False(t, s.Overflowed())
	assert.False(t, s.AppendParameter(strings.Repeat("a", ParameterCapacity+1)))
	assert.True(t, s.Overflowed())
}

func TestScanner_String(t *testing.T) {
	var s Scanner
	require.NoError(t, s.AppendPrefix('?'))
	s.AppendParameter("1002")
	s.AppendParameter("1006")

	assert.Equal(t, "?1002;1006", s.String())
}

package vtparams

import "math"

// MaxParamValue is the value numeric parameters saturate at.
const MaxParamValue = math.MaxInt32

// Params is the read side shared by a Scanner and the sub-parameters produced
// by ExpandParameter.
type Params interface {
	ParamCount() int
	ParameterString(i int) string
	ParameterInt(i int) int
	DefaultInt(i, def int) int
}

// parseInt reads the leading decimal digits of s. It stops at the first
// non-digit, returns 0 for an empty prefix and saturates at MaxParamValue.
func parseInt(s []rune) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n > (MaxParamValue-int(r-'0'))/10 {
			return MaxParamValue
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// SubParams is an immutable list of fields split out of one parameter, for
// example the colour components of "38:2:255:0:0".
type SubParams struct {
	fields []string
}

var _ Params = SubParams{}

func (p SubParams) ParamCount() int { return len(p.fields) }

func (p SubParams) ParameterString(i int) string {
	if i < 0 || i >= len(p.fields) {
		return ""
	}
	return p.fields[i]
}

func (p SubParams) ParameterInt(i int) int {
	return parseInt([]rune(p.ParameterString(i)))
}

func (p SubParams) DefaultInt(i, def int) int {
	if i < 0 || i >= len(p.fields) {
		return def
	}
	return p.ParameterInt(i)
}

package cipher

import (
	"fmt"
)

// Op names one pipeline primitive
type Op string

const (
	OpRC4           Op = "rc4"
	OpBase64Encode  Op = "base64_encode"
	OpBase64Decode  Op = "base64_decode"
	OpSubstitute    Op = "substitute"
	OpReverse       Op = "reverse"
	OpPercentEncode Op = "percent_encode"
	OpPercentDecode Op = "percent_decode"
)

// Step is one keyed primitive in a Pipeline. Key is used by OpRC4,
// Search/Replace by OpSubstitute.
type Step struct {
	Op      Op     `json:"op"`
	Key     string `json:"key,omitempty"`
	Search  string `json:"search,omitempty"`
	Replace string `json:"replace,omitempty"`
}

func RC4Step(key string) Step { return Step{Op: OpRC4, Key: key} }

func Base64EncodeStep() Step { return Step{Op: OpBase64Encode} }

func Base64DecodeStep() Step { return Step{Op: OpBase64Decode} }

func SubstituteStep(search, replace string) Step {
	return Step{Op: OpSubstitute, Search: search, Replace: replace}
}

func ReverseStep() Step { return Step{Op: OpReverse} }

func PercentEncodeStep() Step { return Step{Op: OpPercentEncode} }

func PercentDecodeStep() Step { return Step{Op: OpPercentDecode} }

// Apply runs the step on in
func (s Step) Apply(in string) (string, error) {
	switch s.Op {
	case OpRC4:
		return RC4(s.Key, in)
	case OpBase64Encode:
		return Base64Encode(in), nil
	case OpBase64Decode:
		return Base64Decode(in)
	case OpSubstitute:
		return Substitute(in, s.Search, s.Replace)
	case OpReverse:
		return Reverse(in), nil
	case OpPercentEncode:
		return PercentEncode(in), nil
	case OpPercentDecode:
		return PercentDecode(in)
	default:
		return "", fmt.Errorf("unknown operation: %s", s.Op)
	}
}

func (s Step) String() string {
	switch s.Op {
	case OpRC4:
		return fmt.Sprintf("%s(%s)", s.Op, s.Key)
	case OpSubstitute:
		return fmt.Sprintf("%s(%s->%s)", s.Op, s.Search, s.Replace)
	default:
		return string(s.Op)
	}
}

// Pipeline applies its steps left to right, each output feeding the next step.
type Pipeline []Step

// Run stops at the first failing step and returns a *StepError; there is no
// partial output.
func (p Pipeline) Run(input string) (string, error) {
	result := input
	var err error
	for i, step := range p {
		result, err = step.Apply(result)
		if err != nil {
			return "", &StepError{Index: i, Op: step.Op, Err: err}
		}
	}
	return result, nil
}

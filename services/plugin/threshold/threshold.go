package threshold

import (
	"math"
	"strconv"
	"strings"
)

// Threshold is a Nagios range. A value is in alert when it lies outside [Start, End],
// or inside it when Negate is set
type Threshold struct {
	Start  float64
	End    float64
	Negate bool
}

type parseState struct {
	text      string
	values    [2]float64
	assigned  [2]bool
	current   int
	colons    int
	negations int
	inNumber  bool
	start     int
}

// Parse reads a range written as [@]start:end. Both ends are optional, ~ stands for -Inf as
// start and a single value v is a shortcut of 0:v
func Parse(text string) (*Threshold, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, ErrBadThreshold
	}

	ps := &parseState{
		text:   text,
		values: [2]float64{math.Inf(-1), math.Inf(1)},
	}

	for idx := 0; idx < len(text); idx++ {
		c := text[idx]
		if ps.inNumber {
			if isNumberChar(c) {
				continue
			}
			if c == '@' {
				return nil, ErrBadThreshold
			}

			err := ps.closeNumber(idx)
			if err != nil {
				return nil, err
			}
		}

		err := ps.consume(idx, c)
		if err != nil {
			return nil, err
		}
	}
	if ps.negations > 1 {
		return nil, ErrBadThreshold
	}
	if ps.inNumber {
		err := ps.closeNumber(len(text))
		if err != nil {
			return nil, err
		}
	}

	return ps.build()
}

func (ps *parseState) consume(idx int, c byte) error {
	switch {
	case c == '@':
		ps.negations++
		if ps.colons > 0 || ps.current > 0 {
			return ErrBadThreshold
		}
	case c == ' ' || c == '\t':
	case c == '-' || isDigit(c):
		if ps.assigned[ps.current] {
			return ErrBadThreshold
		}
		ps.inNumber = true
		ps.start = idx
	case c == '~':
		if ps.current > 0 || ps.assigned[0] {
			return ErrBadThreshold
		}
		ps.values[0] = math.Inf(-1)
		ps.assigned[0] = true
	case c == ':':
		ps.colons++
		ps.current = 1
	default:
		return ErrBadThreshold
	}

	return nil
}

func (ps *parseState) closeNumber(end int) error {
	ps.inNumber = false

	value, err := strconv.ParseFloat(ps.text[ps.start:end], 64)
	if err != nil {
		return ErrBadThreshold
	}

	ps.values[ps.current] = value
	ps.assigned[ps.current] = true

	return nil
}

func (ps *parseState) build() (*Threshold, error) {
	negate := ps.negations > 0

	switch ps.colons {
	case 0:
		if ps.values[0] <= 0 {
			return nil, &NegativeSimpleThresholdError{Value: ps.values[0]}
		}

		return &Threshold{
			Start:  0,
			End:    ps.values[0],
			Negate: negate,
		}, nil
	case 1:
		if ps.values[0] > ps.values[1] {
			return nil, &BadThresholdRangeError{
				Start: ps.values[0],
				End:   ps.values[1],
			}
		}

		return &Threshold{
			Start:  ps.values[0],
			End:    ps.values[1],
			Negate: negate,
		}, nil
	default:
		return nil, ErrBadThreshold
	}
}

// InAlert returns true if the value should raise the alert tied to this threshold
func (t *Threshold) InAlert(value float64) bool {
	outside := value < t.Start || value > t.End

	return outside != t.Negate
}

// String returns the range in the [@]start:end form used by perfdata
func (t *Threshold) String() string {
	prefix := ""
	if t.Negate {
		prefix = "@"
	}

	start := "~"
	if !math.IsInf(t.Start, -1) {
		start = formatValue(t.Start)
	}
	end := ""
	if !math.IsInf(t.End, 1) {
		end = formatValue(t.End)
	}

	return prefix + start + ":" + end
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isNumberChar(c byte) bool {
	return isDigit(c) || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E'
}

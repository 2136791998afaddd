package threshold

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrBadThreshold signals a range that does not follow the [@]start:end syntax
var ErrBadThreshold = errors.New("Threshold: The threshold syntax must follow '[@]start:end'")

// BadThresholdRangeError signals a two-sided range whose start is greater than its end
type BadThresholdRangeError struct {
	Start float64
	End   float64
}

// Error returns the string representation of the error
func (e *BadThresholdRangeError) Error() string {
	return fmt.Sprintf("Threshold: The start value %s must be less than the end value %s",
		formatValue(e.Start), formatValue(e.End))
}

// NegativeSimpleThresholdError signals a single value range, shorthand of 0:value, with value <= 0
type NegativeSimpleThresholdError struct {
	Value float64
}

// Error returns the string representation of the error
func (e *NegativeSimpleThresholdError) Error() string {
	v := formatValue(e.Value)
	return fmt.Sprintf("Threshold: This syntax is a shortcut of '0:%s', so %s must be greater than 0.", v, v)
}

func formatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

package compute

import (
	"strconv"
	"strings"
)

// FormatFloat renders a value with two decimals, then trims the trailing zeros and the
// trailing decimal point: 40.00 becomes "40" and 40.009 becomes "40.01"
func FormatFloat(value float64) string {
	s := strconv.FormatFloat(value, 'f', 2, 64)
	if !strings.Contains(s, ".") {
		return s
	}

	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Package cli provides formatting and rendering helpers for terminal
// output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCost formats a USD cost value, keeping enough precision for the
// sub-cent deltas a single prompt produces.
func FormatCost(cost float64) string {
	switch {
	case cost >= 1000:
		return "$" + FormatNumber(int64(math.Round(cost)))
	case cost >= 100:
		return fmt.Sprintf("$%.0f", cost)
	case cost >= 10:
		return fmt.Sprintf("$%.1f", cost)
	case cost >= 1:
		return fmt.Sprintf("$%.2f", cost)
	case cost == 0:
		return "$0.00"
	default:
		return fmt.Sprintf("$%.4f", cost)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

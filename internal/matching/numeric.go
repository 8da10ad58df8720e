package matching

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// parseAnswer reads a quiz number. Blank or non-numeric input is absent.
func parseAnswer(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseLeadingInt reads an integer from the start of a catalog cell:
// leading whitespace, an optional sign, then digits. Anything after the
// digits is ignored, so "1,200" is 1 and "799 mm" is 799.
func parseLeadingInt(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	sign := 1
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Overflow: saturate rather than drop the cell.
		if sign < 0 {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return sign * n, true
}

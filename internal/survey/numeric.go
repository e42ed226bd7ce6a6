package survey

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumeric parses a survey answer as a number. It tolerates surrounding
// spaces (including NBSP), a percent sign and ',' thousands separators in
// well-formed groups ("12,500"). Anything else, and NaN or Inf, is not numeric.
// Formatting the result and parsing it again yields the same value.
func ParseNumeric(s string) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	if raw == "" {
		return 0, false
	}
	if strings.Contains(raw, ",") {
		var ok bool
		if raw, ok = stripThousands(raw); !ok {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// stripThousands removes ',' group separators when every group after the first
// has exactly three digits.
func stripThousands(raw string) (string, bool) {
	intPart, frac := raw, ""
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		intPart, frac = raw[:i], raw[i:]
	}
	if strings.Contains(frac, ",") {
		return "", false
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") || strings.HasPrefix(intPart, "+") {
		sign, intPart = intPart[:1], intPart[1:]
	}
	groups := strings.Split(intPart, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 || !allDigits(groups[0]) {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !allDigits(g) {
			return "", false
		}
	}
	return sign + strings.Join(groups, "") + frac, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// formatNumber renders a float the shortest way that parses back to the same value.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

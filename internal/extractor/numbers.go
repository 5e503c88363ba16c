package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonNumericRegex = regexp.MustCompile(`[^0-9.\-]`)

// ParseNumber strips everything that is not a digit, '.' or '-' and parses
// the remainder. Returns nil when no valid numeric literal is left.
func ParseNumber(text string) *float64 {
	cleaned := nonNumericRegex.ReplaceAllString(text, "")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// CleanPercent pre-cleans a percent display before ParseNumber. Parentheses
// on the source pages mark a duplicated percent display, not negativity, so
// they are dropped along with '%' and '+'; sign stays with an explicit '-'.
func CleanPercent(text string) string {
	r := strings.NewReplacer("%", "", "+", "", "(", "", ")", "")
	return r.Replace(text)
}

// IsPlausiblePrice rejects decoy numbers from ads and unrelated widgets.
// Boundaries are exclusive.
func IsPlausiblePrice(x float64) bool {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return false
	}
	return x > 0.01 && x < 100000
}

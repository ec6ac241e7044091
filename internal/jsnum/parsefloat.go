// Package jsnum implements the ECMAScript number parsing functions, for
// values sourced from a page.
package jsnum

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseFloat implements the global parseFloat function: leading whitespace
// is skipped, then the longest prefix forming a decimal literal (or
// Infinity) is parsed. Returns NaN if there is no such prefix.
func ParseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := 1.0
	body := s
	if len(body) != 0 && (body[0] == '+' || body[0] == '-') {
		if body[0] == '-' {
			sign = -1
		}
		body = body[1:]
	}
	if strings.HasPrefix(body, `Infinity`) {
		return math.Inf(int(sign))
	}

	n := decimalPrefix(body)
	if n == 0 {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(body[:n], 64)
	if err != nil {
		// only out of range is possible, v is ±Inf or 0 as appropriate
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return math.NaN()
		}
	}
	return sign * v
}

// decimalPrefix returns the length of the longest StrDecimalLiteral prefix
// (sans sign) of s, or 0.
func decimalPrefix(s string) int {
	i := 0
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits != 0 || frac != 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// OrZero mirrors the `parseFloat(s) || 0` idiom, mapping NaN (and -0) to 0.
func OrZero(v float64) float64 {
	if math.IsNaN(v) || v == 0 {
		return 0
	}
	return v
}

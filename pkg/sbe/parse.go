package sbe

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

var hyphenatedTimestamp = regexp.MustCompile(`^(\d{8})-(\d{2}):(\d{2}):(\d{2})\.(\d{3})$`)
var plainTimestamp = regexp.MustCompile(`^\d{17}$`)

// parseScaledInt parses a decimal string (optionally signed, optionally
// fractional) into its fixed-point integer representation at the given
// scale, truncating excess fractional digits. Overflow of the intermediate
// magnitude is detected via uint256 before the final cast to int64, so an
// out-of-range value fails instead of wrapping.
func parseScaledInt(raw []byte, scale int) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, fracPart = s[:idx], s[idx+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return 0, fmt.Errorf("not a decimal number: %q", s)
	}

	if len(fracPart) > scale {
		fracPart = fracPart[:scale]
	} else {
		fracPart += strings.Repeat("0", scale-len(fracPart))
	}

	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		digits = "0"
	}

	var u uint256.Int
	if err := u.SetFromDecimal(digits); err != nil {
		return 0, fmt.Errorf("overflow parsing %q: %w", s, err)
	}
	if !u.IsUint64() {
		return 0, fmt.Errorf("overflow: %q exceeds 64 bits at scale %d", s, scale)
	}
	v := u.Uint64()
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("overflow: %q exceeds int64 at scale %d", s, scale)
	}
	result := int64(v)
	if neg {
		result = -result
	}
	return result, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// parseTimestamp accepts either the canonical 17-digit YYYYMMDDHHMMSSmmm
// form or FIX's hyphenated YYYYMMDD-HH:MM:SS.mmm form, normalizing both to
// the 17-digit integer.
func parseTimestamp(raw []byte) (uint64, error) {
	s := strings.TrimSpace(string(raw))
	if plainTimestamp.MatchString(s) {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, err
		}
		return v, nil
	}
	m := hyphenatedTimestamp.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("not a recognized timestamp: %q", s)
	}
	digits := m[1] + m[2] + m[3] + m[4] + m[5]
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// parseBoolean accepts the FIX-idiomatic spellings of a boolean value.
func parseBoolean(raw []byte) (bool, error) {
	switch strings.TrimSpace(string(raw)) {
	case "Y", "y", "true", "1":
		return true, nil
	case "N", "n", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("not a recognized boolean: %q", raw)
	}
}

func parseChar(raw []byte) (byte, error) {
	s := strings.TrimSpace(string(raw))
	if len(s) == 0 {
		return 0, fmt.Errorf("empty char value")
	}
	return s[0], nil
}

func parseUint32Value(raw []byte) (uint32, error) {
	s := strings.TrimSpace(string(raw))
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func parseFloat64Value(raw []byte) (float64, error) {
	s := strings.TrimSpace(string(raw))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Chilean PPU after normalization: letters+digits, 5-6 chars.
	rePlate = regexp.MustCompile(`^[A-Z0-9]{5,6}$`)
	reDesc  = regexp.MustCompile(`^[\pL\pN ()/.,+&%-]{3,120}$`)
)

// Plate normalizes and validates a license plate.
func Plate(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "", " ", "").Replace(s)
	return s, rePlate.MatchString(s)
}

// Desc validates a free-text task description.
func Desc(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reDesc.MatchString(s)
}

// Qty parses a line quantity; 0 is meaningful (it removes the line).
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 99 {
		return 0, false
	}
	return n, true
}

// Money parses a positive peso amount.
func Money(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || v > 100_000_000 {
		return 0, false
	}
	return v, true
}

// Name validates a short displayable field (model, end user).
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

// Notes trims and caps the free-text observations block.
func Notes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 1000 {
		s = s[:1000]
	}
	return s
}

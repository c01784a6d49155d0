package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	bceYearRe = regexp.MustCompile(`^(\d+)\s*(BCE|BC)$`)
	ceYearRe  = regexp.MustCompile(`^(\d+)\s*(CE|AD)?$`)
)

// ParseYear parses a year string, handling BCE/BC notation:
//
//	"1500"    -> 1500
//	"500 BCE" -> -500
//	"200 BC"  -> -200
//	"800 AD"  -> 800
//
// Returns (0, false) for empty or unparseable input.
func ParseYear(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	if m := bceYearRe.FindStringSubmatch(s); m != nil {
		y, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return -y, true
	}

	if m := ceYearRe.FindStringSubmatch(s); m != nil {
		y, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return y, true
	}

	return 0, false
}

// YearString formats a signed year for display, rendering negative years as BCE.
func YearString(year *int) string {
	if year == nil {
		return "unknown"
	}
	if *year < 0 {
		return fmt.Sprintf("%d BCE", -*year)
	}
	return strconv.Itoa(*year)
}

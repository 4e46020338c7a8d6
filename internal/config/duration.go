package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ParseDuration parses a Go-style duration string with extended day and week
// units. It is the parser used for every duration field in a walk document.
func ParseDuration(raw string) (time.Duration, error) {
	return parseDurationExtended(raw)
}

// parseDurationExtended parses Go-style duration strings and adds support for:
// - d (days) where 1d = 24h
// - w (weeks) where 1w = 7d
//
// Examples: "15s", "7d", "1w2d", "1.5d", "-2w".
func parseDurationExtended(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("duration is required")
	}

	// If there are no day/week units, defer entirely to Go.
	if !strings.ContainsAny(raw, "dw") {
		return time.ParseDuration(raw)
	}

	s := raw
	negative := false
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		negative = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}

	var total time.Duration
	for len(s) > 0 {
		numStr, rest, err := scanNumber(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		unit, rest, err := scanUnit(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		s = rest

		switch unit {
		case "d", "w":
			value, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", raw)
			}
			hours := value * 24
			if unit == "w" {
				hours *= 7
			}
			total += time.Duration(hours * float64(time.Hour))
		default:
			// Any other unit is Go's problem to validate.
			part, err := time.ParseDuration(numStr + unit)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
			}
			total += part
		}
	}

	if negative {
		total = -total
	}
	return total, nil
}

// scanNumber consumes a leading [0-9]+(.[0-9]+)? sequence.
func scanNumber(s string) (string, string, error) {
	i := 0
	dotSeen := false
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' {
			i++
			continue
		}
		if c == '.' && !dotSeen {
			dotSeen = true
			i++
			continue
		}
		break
	}
	if i == 0 {
		return "", s, fmt.Errorf("expected number")
	}
	return s[:i], s[i:], nil
}

// scanUnit consumes a leading run of unit letters (incl. µ).
func scanUnit(s string) (string, string, error) {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return "", s, fmt.Errorf("invalid unit")
		}
		if r == 'µ' || unicode.IsLetter(r) {
			i += size
			continue
		}
		break
	}
	if i == 0 {
		return "", s, fmt.Errorf("expected unit")
	}
	return s[:i], s[i:], nil
}

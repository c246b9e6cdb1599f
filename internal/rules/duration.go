package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses TTL-style durations. On top of time.ParseDuration it
// accepts day and week units ("30d", "2w") since those dominate rule files.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, ok := cutUnit(s, "d"); ok {
		return time.Duration(n * float64(24*time.Hour)), nil
	}
	if n, ok := cutUnit(s, "w"); ok {
		return time.Duration(n * float64(7*24*time.Hour)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return d, nil
}

func cutUnit(s, unit string) (float64, bool) {
	body, ok := strings.CutSuffix(s, unit)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(body, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseTimeOfDay parses an "HH:MM" wall-clock value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("time of day %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("time of day %q: bad hour", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q: bad minute", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

package utils

import (
	"fmt"
	"strconv"
)

const (
	DefaultWindowDays = 7
	MaxWindowDays     = 365
)

// ParseWindowDays parses the days query parameter. Empty input falls back to
// the default window; anything outside 1..MaxWindowDays is rejected.
func ParseWindowDays(raw string) (int, error) {
	if raw == "" {
		return DefaultWindowDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid 'days' parameter: %q is not an integer", raw)
	}
	if days < 1 || days > MaxWindowDays {
		return 0, fmt.Errorf("invalid 'days' parameter: must be between 1 and %d", MaxWindowDays)
	}
	return days, nil
}

package utils

import (
	"strconv"
	"strings"
)

// ParseFloatOrZero coerces a free-form numeric field to a float64,
// returning 0 when the field is empty or malformed. Authoring forms send
// numerics as strings; rejection of genuinely missing values is the
// validator's job, not the parser's.
func ParseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseIntOrDefault coerces a free-form integer field, falling back to
// def when empty or malformed.
func ParseIntOrDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

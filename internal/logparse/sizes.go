package logparse

import (
	"math"
	"regexp"
	"strconv"
)

// Suffixes are case-sensitive in the source format: "B" bytes, "k" KiB,
// "M" MiB, "G" GiB. Binary multipliers throughout.
var sizeRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)(B|k|M|G)$`)

// ParseSize decodes the SDK's compact size notation into a byte count,
// e.g. "5.9k" -> 6042, "113B" -> 113. Returns false for anything it does
// not recognize; callers then keep only the raw string.
func ParseSize(s string) (int64, bool) {
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "k":
		v *= 1024
	case "M":
		v *= 1024 * 1024
	case "G":
		v *= 1024 * 1024 * 1024
	}
	return int64(math.Round(v)), true
}

// ParseDurationMs converts a decimal duration value with its unit ("ms" or
// "s") into whole milliseconds, rounding half up. Any strictly positive
// value reports at least 1ms so sub-millisecond responses stay visible.
func ParseDurationMs(value, unit string) (int64, bool) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	if unit == "s" {
		v *= 1000
	}
	ms := int64(math.Round(v))
	if ms == 0 && v > 0 {
		ms = 1
	}
	return ms, true
}

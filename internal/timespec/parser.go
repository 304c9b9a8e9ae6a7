// Package timespec parses the --since and --until values accepted by
// runs list.
package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse converts a time specification into Unix milliseconds relative to now.
//
// Accepted forms:
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
//   - Go durations, meaning that long ago: "90m", "1h30m"
//   - Whole days, meaning that many days ago: "7d"
func Parse(spec string, now time.Time) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}

	if d, ok := parseDays(spec); ok {
		return now.Add(-d).UnixMilli(), nil
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative duration: %s", spec)
		}
		return now.Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use a duration like '1h30m', days like '7d', or RFC3339 like '2025-10-29T13:00:00Z')", spec)
}

func parseDays(spec string) (time.Duration, bool) {
	digits, found := strings.CutSuffix(spec, "d")
	if !found || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return time.Duration(n) * 24 * time.Hour, true
}

// ParseRange parses --since and --until into (sinceMs, untilMs).
// A zero value means that end is unbounded.
func ParseRange(since, until string, now time.Time) (int64, int64, error) {
	var sinceMS, untilMS int64
	var err error

	if since != "" {
		if sinceMS, err = Parse(since, now); err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		if untilMS, err = Parse(until, now); err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if sinceMS > 0 && untilMS > 0 && sinceMS >= untilMS {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}

	return sinceMS, untilMS, nil
}

package filter

import (
	"fmt"
	"time"
)

// ParseTime parses a time specification into a Unix timestamp in
// milliseconds. It accepts a Go duration ("90s", "1h30m"), read as that long
// before now, or an RFC3339 timestamp.
func ParseTime(spec string, now time.Time) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("invalid time specification: %s (duration must not be negative)", spec)
		}
		return now.Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use duration like '10m' or RFC3339 like '2025-10-29T13:00:00Z')", spec)
}

// ParseRange parses the --since and --until flags into c's time bounds.
// An empty flag leaves that bound open.
func (c *Criteria) ParseRange(since, until string, now time.Time) error {
	var err error

	if since != "" {
		c.SinceTimestampMs, err = ParseTime(since, now)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		c.UntilTimestampMs, err = ParseTime(until, now)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
	}

	if c.SinceTimestampMs > 0 && c.UntilTimestampMs > 0 && c.SinceTimestampMs >= c.UntilTimestampMs {
		return fmt.Errorf("--since must be before --until")
	}

	return nil
}

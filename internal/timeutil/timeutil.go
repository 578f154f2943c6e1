// Package timeutil holds the pure time helpers used by the session core.
// All arithmetic is UTC epoch milliseconds; every function is total and
// returns a safe default instead of an error.
package timeutil

import (
	"strconv"
	"time"

	"codeberg.org/algopatterns/client/internal/logger"
)

// returns the current instant in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// converts a remote timestamp into a UTC instant. Accepts an epoch in
// milliseconds (any numeric type), an RFC3339 string, or a numeric string.
// Invalid input yields the zero time rather than an error.
func ParseInstant(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v.UTC()

	case int64:
		return time.UnixMilli(v).UTC()

	case int:
		return time.UnixMilli(int64(v)).UTC()

	case float64:
		// JSON numbers decode as float64
		return time.UnixMilli(int64(v)).UTC()

	case string:
		if v == "" {
			return time.Time{}
		}

		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC()
		}

		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC()
		}

		// some clients send the epoch as a string
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}

		return time.Time{}

	default:
		return time.Time{}
	}
}

// returns whole seconds elapsed since start, clamped to >= 0.
// A future-dated start is a data error: it is logged and reported as 0,
// never as a negative duration.
func ElapsedSeconds(start time.Time) int {
	return ElapsedSecondsAt(start, Now())
}

// like ElapsedSeconds but against an explicit reference instant
func ElapsedSecondsAt(start, now time.Time) int {
	if start.IsZero() {
		return 0
	}

	if start.After(now) {
		logger.Warn("session start timestamp is in the future",
			"start", start.Format(time.RFC3339),
			"now", now.Format(time.RFC3339),
		)
		return 0
	}

	return int(now.Sub(start) / time.Second)
}

// formats a second count as MM:SS
func FormatMMSS(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	return pad2(minutes) + ":" + pad2(seconds)
}

// formats a second count as HH:MM:SS
func FormatHHMMSS(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return pad2(hours) + ":" + pad2(minutes) + ":" + pad2(seconds)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}

	return strconv.Itoa(n)
}

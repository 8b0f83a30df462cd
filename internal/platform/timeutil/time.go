package timeutil

import (
	"time"
)

// RFC3339Millis is RFC 3339 UTC with fixed millisecond precision.
// Use this format for consistent timestamp output across the API.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

// RFC3339Micros is RFC 3339 UTC with fixed microsecond precision.
// Use this format for log timestamps where higher precision is needed.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// Clock returns the current instant. Handlers take one so tests can pin time.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// FormatMillis renders t in UTC as "2024-01-15T10:30:00.000Z".
// Sub-millisecond precision is truncated, never rounded.
func FormatMillis(t time.Time) string {
	return t.UTC().Format(RFC3339Millis)
}

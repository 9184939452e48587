package epg

import (
	"log/slog"
	"time"

	"github.com/alorle/stream-bridge/internal/catalog"
)

// TimeLayout is the XMLTV timestamp layout, always rendered in UTC.
const TimeLayout = "20060102150405 -0700"

// Timestamps outside these bounds do not fit the four-digit year.
const (
	minUnix = -62135596800 // 0001-01-01T00:00:00Z
	maxUnix = 253402300799 // 9999-12-31T23:59:59Z
)

// FormatTime renders an epoch timestamp as "YYYYMMDDHHMMSS +0000".
// It returns the empty string when the timestamp is missing, zero, not an
// integer, or outside years 1 to 9999; the last two are logged as warnings.
func FormatTime(ts catalog.Epoch) string {
	if ts.IsZero() {
		return ""
	}

	sec, err := ts.Unix()
	if err != nil {
		slog.Warn("failed to format guide timestamp", "timestamp", string(ts), "error", err)
		return ""
	}
	if sec < minUnix || sec > maxUnix {
		slog.Warn("failed to format guide timestamp", "timestamp", string(ts), "error", ErrTimeOutOfRange)
		return ""
	}

	return time.Unix(sec, 0).UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp produced by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

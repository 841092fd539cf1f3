package helpers

import (
	"strconv"
	"time"
)

const TimestampLayout = "2006-01-02 15:04:05"

// FormatFloat renders v in plain decimal notation using the fewest digits
// that still parse back to the same float64.
func FormatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func FormatInt(value int64) string {
	return strconv.FormatInt(value, 10)
}

// FormatTimestamp renders ts in local time truncated to whole seconds.
func FormatTimestamp(ts time.Time) string {
	return ts.Local().Format(TimestampLayout)
}

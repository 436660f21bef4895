package utils

import "time"

// FromUnixMilli converts epoch milliseconds, the unit editor clients use
// for timestamps, to a UTC time. Zero stays the zero time.
func FromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

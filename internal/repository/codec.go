package repository

import "time"

// UnixMillis encodes t for integer timestamp columns. The zero time maps to 0.
func UnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMillis decodes an integer timestamp column written by UnixMillis.
func FromUnixMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

package usecase

import "time"

// Clock returns the current time. Services call it once per operation.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

const (
	// TimestampLayout is the ingestion and bookkeeping timestamp format.
	TimestampLayout = "2006-01-02T15:04:05.000000"
	// SessionIDLayout is the time suffix of generated session ids.
	SessionIDLayout = "20060102_150405"
)

func orSystem(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

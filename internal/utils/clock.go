package utils

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// UTCClock is the wall clock, normalised to UTC.
var UTCClock Clock = ClockFunc(func() time.Time {
	return time.Now().UTC()
})

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time {
		return t
	})
}

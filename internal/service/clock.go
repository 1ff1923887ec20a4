package service

import "time"

// Clock returns the current time
type Clock func() time.Time

// SystemClock returns a clock reading wall time in loc
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}

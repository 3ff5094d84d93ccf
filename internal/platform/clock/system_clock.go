package clock

import "time"

// SystemClock reads wall-clock time in a fixed location. Window gating and
// daily buckets both depend on the deployment timezone, so the location is
// injected once at startup instead of hard-coding UTC.
type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{loc: loc}
}

func (c SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

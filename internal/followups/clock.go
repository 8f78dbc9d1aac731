package followups

import "time"

// Clock supplies the current instant and the civil date in the operating
// timezone. Dates are stored as UTC midnight of the civil date.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock creates a Clock for loc. A nil now uses time.Now.
func NewClock(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return Clock{now: now, loc: loc}
}

// Now returns the current instant.
func (c Clock) Now() time.Time {
	return c.now()
}

// Today returns the current civil date.
func (c Clock) Today() time.Time {
	return Date(c.now().In(c.loc))
}

// Date truncates t to its calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

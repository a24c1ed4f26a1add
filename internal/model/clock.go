package model

import (
	"fmt"
	"time"
)

// clockLayout accepts one or two hour digits and exactly two minute digits.
const clockLayout = "15:04"

// Clock is a minutes-precision time of day.
type Clock struct {
	Hours   int
	Minutes int
}

// ParseClock parses "H:MM" or "HH:MM". The second return value is false when
// the string is malformed or out of range.
func ParseClock(s string) (Clock, bool) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return Clock{}, false
	}
	return Clock{Hours: t.Hour(), Minutes: t.Minute()}, true
}

// MustParseClock is like ParseClock but panics on bad input. Meant for
// literals in code and tests.
func MustParseClock(s string) Clock {
	c, ok := ParseClock(s)
	if !ok {
		panic(fmt.Sprintf("model: invalid clock %q", s))
	}
	return c
}

// On returns the instant at this clock time on the calendar date of day,
// in day's location. Seconds and below are zero.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hours, c.Minutes, 0, 0, day.Location())
}

// Before reports whether c is earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.Hours < other.Hours || (c.Hours == other.Hours && c.Minutes < other.Minutes)
}

func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d", c.Hours, c.Minutes)
}

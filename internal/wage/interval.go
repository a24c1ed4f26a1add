package wage

import "time"

// interval is the half-open span [start, end).
type interval struct {
	start time.Time
	end   time.Time
}

// overlapMinutes returns how many whole minutes i and other share. Disjoint
// spans share zero.
func (i interval) overlapMinutes(other interval) int64 {
	start := i.start
	if other.start.After(start) {
		start = other.start
	}
	end := i.end
	if other.end.Before(end) {
		end = other.end
	}
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Minute)
}

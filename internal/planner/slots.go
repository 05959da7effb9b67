package planner

import (
	"slices"
	"time"

	"backend-itinerary/internal/experience"
)

// Conflicts reports whether a and b overlap once buffer is added after each.
func Conflicts(a, b experience.TimeWindow, buffer time.Duration) bool {
	return !(a.End.Add(buffer) <= b.Start || b.End.Add(buffer) <= a.Start)
}

// AssignSlot returns the earliest-starting window that does not conflict with
// any committed window.
func AssignSlot(windows, committed []experience.TimeWindow, buffer time.Duration) (experience.TimeWindow, bool) {
	ordered := slices.Clone(windows)
	sortWindows(ordered)
	for _, w := range ordered {
		free := true
		for _, c := range committed {
			if Conflicts(w, c, buffer) {
				free = false
				break
			}
		}
		if free {
			return w, true
		}
	}
	return experience.TimeWindow{}, false
}

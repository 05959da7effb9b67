package planner

import (
	"slices"
	"time"

	"backend-itinerary/internal/experience"
)

// Availability indexes the weekly windows of a candidate set by experience.
type Availability struct {
	byID map[string]experience.Weekly
}

func NewAvailability(candidates []Candidate) Availability {
	byID := make(map[string]experience.Weekly, len(candidates))
	for _, c := range candidates {
		byID[c.ID()] = c.Experience.Availability
	}
	return Availability{byID: byID}
}

// Windows returns the experience's windows on day ordered by start time. The
// result is a copy and is empty when the experience is unknown.
func (a Availability) Windows(id string, day time.Weekday) []experience.TimeWindow {
	weekly, ok := a.byID[id]
	if !ok {
		return nil
	}
	windows := slices.Clone(weekly[day])
	sortWindows(windows)
	return windows
}

func sortWindows(windows []experience.TimeWindow) {
	slices.SortStableFunc(windows, func(a, b experience.TimeWindow) int {
		if a.Start != b.Start {
			return int(a.Start) - int(b.Start)
		}
		return int(a.End) - int(b.End)
	})
}

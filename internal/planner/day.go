package planner

import (
	"fmt"
	"math/rand"

	"backend-itinerary/internal/experience"
)

// Used is the set of experiences already scheduled during a generation run.
// It is treated as immutable; With returns an extended copy.
type Used map[string]struct{}

func (u Used) Has(id string) bool {
	_, ok := u[id]
	return ok
}

func (u Used) With(ids ...string) Used {
	next := make(Used, len(u)+len(ids))
	for id := range u {
		next[id] = struct{}{}
	}
	for _, id := range ids {
		next[id] = struct{}{}
	}
	return next
}

// DayInput is everything needed to plan a single trip day.
type DayInput struct {
	Day          int
	Date         Date
	Candidates   []Candidate
	Availability Availability
	TimeOfDay    TimeOfDay
	Intensity    Intensity
	Policy       DistancePreference
	IsToday      bool
	Now          experience.ClockTime
	Rand         *rand.Rand
	Settings     Settings
}

type DayResult struct {
	Day   int
	Items []Item
	Quota int
}

// Shortfall reports whether the day fell short of its quota.
func (r DayResult) Shortfall() (Shortfall, bool) {
	if len(r.Items) >= r.Quota {
		return Shortfall{}, false
	}
	return Shortfall{Day: r.Day, Quota: r.Quota, Scheduled: len(r.Items)}, true
}

// DailyQuota maps intensity to a per-day limit, halved when planning today
// at or after the late-start hour.
func DailyQuota(intensity Intensity, isToday bool, hour int, s Settings) int {
	quota := 2
	switch intensity {
	case IntensityModerate:
		quota = 3
	case IntensityHigh:
		quota = 4
	}
	if isToday && hour >= s.LateStartHour {
		quota /= 2
		if quota < 1 {
			quota = 1
		}
	}
	return quota
}

// PlanDay schedules up to the day's quota from the candidates not yet used and
// returns the items together with the extended used set.
func PlanDay(in DayInput, used Used) (DayResult, Used) {
	weekday := in.Date.Weekday()
	quota := DailyQuota(in.Intensity, in.IsToday, in.Now.Hour(), in.Settings)
	result := DayResult{Day: in.Day, Quota: quota}

	windows := make(map[string][]experience.TimeWindow)
	var pool []Candidate
	for _, c := range in.Candidates {
		if used.Has(c.ID()) {
			continue
		}
		var open []experience.TimeWindow
		for _, w := range in.Availability.Windows(c.ID(), weekday) {
			if in.IsToday && w.Start <= in.Now {
				continue
			}
			if !in.Settings.MatchesTimeOfDay(in.TimeOfDay, w) {
				continue
			}
			open = append(open, w)
		}
		if len(open) == 0 {
			continue
		}
		windows[c.ID()] = open
		pool = append(pool, c)
	}

	var committed []experience.TimeWindow
	var scheduled []string
	for _, c := range OrderPool(pool, in.Policy, in.Rand, in.Settings) {
		if len(result.Items) >= quota {
			break
		}
		slot, ok := AssignSlot(windows[c.ID()], committed, in.Settings.Buffer)
		if !ok {
			continue
		}
		committed = append(committed, slot)
		scheduled = append(scheduled, c.ID())
		result.Items = append(result.Items, Item{
			ExperienceID: c.ID(),
			CreatorID:    c.Experience.CreatorID,
			Title:        c.Experience.Title,
			Day:          in.Day,
			Date:         in.Date,
			Start:        slot.Start,
			End:          slot.End,
			Note:         fmt.Sprintf("Day %d (%s): %s from %s to %s", in.Day, weekday, c.Experience.Title, slot.Start, slot.End),
			DistanceKm:   c.DistanceKm,
			Price:        c.Experience.Price,
		})
	}
	return result, used.With(scheduled...)
}

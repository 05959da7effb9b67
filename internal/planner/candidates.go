package planner

import (
	"math"
	"strings"
	"time"

	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/shared/geo"
)

// Reference is the point distances are measured from. When Resolved is false
// the area text is matched against each experience's recorded area instead.
type Reference struct {
	Point    geo.Point
	Resolved bool
	AreaText string
}

// Breakdown counts the experiences surviving each filter stage, in order.
type Breakdown struct {
	Active            int    `json:"active"`
	Area              int    `json:"area"`
	Companion         int    `json:"companion"`
	Availability      int    `json:"availability"`
	TimeOfDay         int    `json:"time_of_day"`
	Budget            int    `json:"budget"`
	Category          int    `json:"category"`
	ReferenceResolved bool   `json:"reference_resolved"`
	Suggestion        string `json:"suggestion,omitempty"`
}

type stage struct {
	count  *int
	advice string
	keep   func(c Candidate) bool
}

// BuildCandidates filters the catalog down to the experiences that satisfy the
// traveler's preferences and annotates each with its distance from ref.
func BuildCandidates(experiences []experience.Experience, prefs Preferences, ref Reference, s Settings) ([]Candidate, Breakdown) {
	b := Breakdown{ReferenceResolved: ref.Resolved}

	pool := make([]Candidate, 0, len(experiences))
	for _, e := range experiences {
		c := Candidate{Experience: e}
		if ref.Resolved {
			c.DistanceKm = distanceFrom(ref.Point, e)
		}
		pool = append(pool, c)
	}

	weekdays := spannedWeekdays(prefs.StartDate, prefs.EndDate)
	radius := radiusFor(prefs.Distance, s)
	area := strings.ToLower(strings.TrimSpace(ref.AreaText))

	stages := []stage{
		{&b.Active, "no active experiences are listed yet", func(c Candidate) bool {
			return c.Experience.IsActive()
		}},
		{&b.Area, "widen the travel distance or try a neighbouring area", func(c Candidate) bool {
			if !ref.Resolved {
				return area == "" || strings.Contains(strings.ToLower(c.Experience.Area), area)
			}
			return c.DistanceKm == nil || *c.DistanceKm <= radius
		}},
		{&b.Companion, "add more companion types or choose Any", func(c Candidate) bool {
			return companionsMatch(prefs.Companions, c.Experience.Companions)
		}},
		{&b.Availability, "shift or extend the travel dates", func(c Candidate) bool {
			if len(weekdays) == 0 {
				return true
			}
			for _, d := range weekdays {
				if c.Experience.AvailableOn(d) {
					return true
				}
			}
			return false
		}},
		{&b.TimeOfDay, "choose Both for time of day", func(c Candidate) bool {
			return hasWindowAt(c.Experience, prefs.TimeOfDay, s)
		}},
		{&b.Budget, "raise the budget tier or choose Any", func(c Candidate) bool {
			return withinBudget(c.Experience.Price, prefs.Budget, s)
		}},
		{&b.Category, "add more categories or leave them empty", func(c Candidate) bool {
			return len(prefs.Categories) == 0 || overlaps(prefs.Categories, c.Experience.Tags)
		}},
	}

	for _, st := range stages {
		kept := pool[:0]
		for _, c := range pool {
			if st.keep(c) {
				kept = append(kept, c)
			}
		}
		pool = kept
		*st.count = len(pool)
		if len(pool) == 0 && b.Suggestion == "" {
			b.Suggestion = st.advice
		}
	}
	return pool, b
}

// distanceFrom prefers the recorded coordinates, then the stored
// distance-from-center, and returns nil when neither is known.
func distanceFrom(ref geo.Point, e experience.Experience) *float64 {
	if e.HasCoordinates() {
		d := ref.DistanceKm(geo.Point{Lat: *e.Lat, Lng: *e.Lng})
		return &d
	}
	if e.DistanceFromCenterKm != nil {
		d := *e.DistanceFromCenterKm
		return &d
	}
	return nil
}

func radiusFor(pref DistancePreference, s Settings) float64 {
	switch pref {
	case DistanceNearby:
		return s.NearbyRadiusKm
	case DistanceModerate:
		return s.ModerateRadiusKm
	default:
		return math.Inf(1)
	}
}

func spannedWeekdays(start, end Date) []time.Weekday {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil
	}
	seen := map[time.Weekday]bool{}
	var days []time.Weekday
	for d := start; !d.After(end) && len(days) < 7; d = d.AddDays(1) {
		if !seen[d.Weekday()] {
			seen[d.Weekday()] = true
			days = append(days, d.Weekday())
		}
	}
	return days
}

func companionsMatch(traveler, accepted []string) bool {
	if containsFold(traveler, CompanionAny) || containsFold(accepted, CompanionAny) {
		return true
	}
	return overlaps(traveler, accepted)
}

func hasWindowAt(e experience.Experience, pref TimeOfDay, s Settings) bool {
	if pref == "" || pref == TimeBoth {
		return true
	}
	for _, windows := range e.Availability {
		for _, w := range windows {
			if s.MatchesTimeOfDay(pref, w) {
				return true
			}
		}
	}
	return false
}

func withinBudget(price float64, budget Budget, s Settings) bool {
	switch budget {
	case BudgetFree:
		return price == 0
	case BudgetBudget:
		return price <= s.BudgetMaxPrice
	case BudgetMidRange:
		return price <= s.MidRangeMaxPrice
	case BudgetPremium:
		return price > s.MidRangeMaxPrice
	default:
		return true
	}
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if containsFold(b, x) {
			return true
		}
	}
	return false
}

func containsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

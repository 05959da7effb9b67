package planner

import (
	"fmt"
	"slices"
	"time"
)

// DraftMeta carries the trip metadata that accompanies the scheduled items.
type DraftMeta struct {
	Title             string
	Notes             string
	TravelerID        string
	Area              string
	StartDate         Date
	EndDate           Date
	ReferenceResolved bool
	GeneratedAt       time.Time
}

// Assemble joins the per-day results into a draft sorted by day and start.
func Assemble(meta DraftMeta, days []DayResult) Draft {
	d := Draft{
		Title:             meta.Title,
		Notes:             meta.Notes,
		TravelerID:        meta.TravelerID,
		Area:              meta.Area,
		StartDate:         meta.StartDate,
		EndDate:           meta.EndDate,
		TotalDays:         meta.StartDate.DaysThrough(meta.EndDate),
		Items:             []Item{},
		ReferenceResolved: meta.ReferenceResolved,
		GeneratedAt:       meta.GeneratedAt,
	}
	if d.Title == "" {
		d.Title = fmt.Sprintf("%s - %s to %s", meta.Area, meta.StartDate, meta.EndDate)
	}
	for _, day := range days {
		d.Items = append(d.Items, day.Items...)
		if s, short := day.Shortfall(); short {
			d.Shortfalls = append(d.Shortfalls, s)
		}
	}
	slices.SortStableFunc(d.Items, compareItems)
	return d
}

func compareItems(a, b Item) int {
	if a.Day != b.Day {
		return a.Day - b.Day
	}
	return int(a.Start) - int(b.Start)
}

// VerifyDraft re-checks the scheduling invariants of a draft submitted for
// saving.
func VerifyDraft(d Draft, buffer time.Duration) error {
	if d.StartDate.IsZero() || d.EndDate.IsZero() || d.StartDate.After(d.EndDate) {
		return fmt.Errorf("%w: start_date and end_date must form a valid range", ErrInvalidDraft)
	}
	if exceedsMaxTrip(d.StartDate, d.EndDate) {
		return fmt.Errorf("%w: trips are limited to %d days", ErrInvalidDraft, MaxTripDays)
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidDraft)
	}
	total := d.StartDate.DaysThrough(d.EndDate)
	seen := make(map[string]bool, len(d.Items))
	for i, item := range d.Items {
		if item.ExperienceID == "" {
			return fmt.Errorf("%w: item %d has no experience_id", ErrInvalidDraft, i)
		}
		if item.Day < 1 || item.Day > total {
			return fmt.Errorf("%w: item %d day_number %d outside 1..%d", ErrInvalidDraft, i, item.Day, total)
		}
		if err := item.Window().Validate(); err != nil {
			return fmt.Errorf("%w: item %d: %v", ErrInvalidDraft, i, err)
		}
		if seen[item.ExperienceID] {
			return fmt.Errorf("%w: experience %s scheduled more than once", ErrInvalidDraft, item.ExperienceID)
		}
		seen[item.ExperienceID] = true
		if i > 0 && compareItems(d.Items[i-1], item) > 0 {
			return fmt.Errorf("%w: items are not ordered by day and start time", ErrInvalidDraft)
		}
		for _, other := range d.Items[:i] {
			if other.Day == item.Day && Conflicts(other.Window(), item.Window(), buffer) {
				return fmt.Errorf("%w: %s conflicts with %s on day %d", ErrInvalidDraft, item.ExperienceID, other.ExperienceID, item.Day)
			}
		}
	}
	return nil
}

package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backend-itinerary/internal/experience"
)

type TimeOfDay string

const (
	TimeDaytime   TimeOfDay = "Daytime"
	TimeNighttime TimeOfDay = "Nighttime"
	TimeBoth      TimeOfDay = "Both"
)

type Budget string

const (
	BudgetFree     Budget = "Free"
	BudgetBudget   Budget = "Budget"
	BudgetMidRange Budget = "MidRange"
	BudgetPremium  Budget = "Premium"
	BudgetAny      Budget = "Any"
)

type Intensity string

const (
	IntensityLow      Intensity = "Low"
	IntensityModerate Intensity = "Moderate"
	IntensityHigh     Intensity = "High"
)

type DistancePreference string

const (
	DistanceNearby   DistancePreference = "Nearby"
	DistanceModerate DistancePreference = "Moderate"
	DistanceFar      DistancePreference = "Far"
)

// Companion types a traveler or an experience may list.
const (
	CompanionSolo    = "Solo"
	CompanionPartner = "Partner"
	CompanionFamily  = "Family"
	CompanionFriends = "Friends"
	CompanionGroup   = "Group"
	CompanionAny     = "Any"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool                 { return d.t.IsZero() }
func (d Date) Time() time.Time              { return d.t }
func (d Date) Weekday() time.Weekday        { return d.t.Weekday() }
func (d Date) AddDays(n int) Date           { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Equal(o Date) bool            { return d.t.Equal(o.t) }
func (d Date) After(o Date) bool            { return d.t.After(o.t) }
func (d Date) Before(o Date) bool           { return d.t.Before(o.t) }
func (d Date) String() string               { return d.t.Format(dateLayout) }
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysThrough counts calendar days from d to end inclusive.
func (d Date) DaysThrough(end Date) int {
	return int(end.t.Sub(d.t).Hours()/24) + 1
}

// Preferences describe what the traveler wants from a generated itinerary.
type Preferences struct {
	Area       string             `json:"area" validate:"required"`
	StartDate  Date               `json:"start_date"`
	EndDate    Date               `json:"end_date"`
	Categories []string           `json:"categories"`
	Companions []string           `json:"companions" validate:"required,min=1,dive,oneof=Solo Partner Family Friends Group Any"`
	TimeOfDay  TimeOfDay          `json:"time_of_day" validate:"omitempty,oneof=Daytime Nighttime Both"`
	Budget     Budget             `json:"budget" validate:"omitempty,oneof=Free Budget MidRange Premium Any"`
	Intensity  Intensity          `json:"activity_intensity" validate:"required,oneof=Low Moderate High"`
	Distance   DistancePreference `json:"travel_distance" validate:"required,oneof=Nearby Moderate Far"`
	Title      string             `json:"title,omitempty"`
	Notes      string             `json:"notes,omitempty"`
}

// TotalDays is the inclusive length of the trip.
func (p Preferences) TotalDays() int {
	return p.StartDate.DaysThrough(p.EndDate)
}

// Candidate is an eligible experience annotated with its distance from the
// resolved reference point. DistanceKm is nil when it cannot be computed.
type Candidate struct {
	Experience experience.Experience
	DistanceKm *float64
}

func (c Candidate) ID() string {
	return c.Experience.ID
}

// Item is one scheduled experience in a draft.
type Item struct {
	ExperienceID string               `json:"experience_id"`
	CreatorID    string               `json:"created_by,omitempty"`
	Title        string               `json:"title"`
	Day          int                  `json:"day_number"`
	Date         Date                 `json:"date"`
	Start        experience.ClockTime `json:"start_time"`
	End          experience.ClockTime `json:"end_time"`
	Note         string               `json:"note"`
	DistanceKm   *float64             `json:"distance_km,omitempty"`
	Price        float64              `json:"price"`
}

func (i Item) Window() experience.TimeWindow {
	return experience.TimeWindow{Start: i.Start, End: i.End}
}

// Shortfall records a day that could not reach its quota.
type Shortfall struct {
	Day       int `json:"day_number"`
	Quota     int `json:"quota"`
	Scheduled int `json:"scheduled"`
}

// Draft is an unpersisted itinerary proposal.
type Draft struct {
	Title             string      `json:"title"`
	Notes             string      `json:"notes,omitempty"`
	TravelerID        string      `json:"traveler_id"`
	Area              string      `json:"area"`
	StartDate         Date        `json:"start_date"`
	EndDate           Date        `json:"end_date"`
	TotalDays         int         `json:"total_days"`
	Items             []Item      `json:"items"`
	Shortfalls        []Shortfall `json:"shortfalls,omitempty"`
	ReferenceResolved bool        `json:"reference_resolved"`
	GeneratedAt       time.Time   `json:"generated_at"`
}

// Settings are the tunable thresholds of the planner.
type Settings struct {
	BudgetMaxPrice   float64
	MidRangeMaxPrice float64
	NearbyRadiusKm   float64
	ModerateRadiusKm float64
	Buffer           time.Duration
	LateStartHour    int
	JitterKm         float64
	NearBandKm       float64
	MidBandKm        float64
	DaytimeStartHour int
	DaytimeEndHour   int
}

func DefaultSettings() Settings {
	return Settings{
		BudgetMaxPrice:   500,
		MidRangeMaxPrice: 2000,
		NearbyRadiusKm:   10,
		ModerateRadiusKm: 40,
		Buffer:           30 * time.Minute,
		LateStartHour:    15,
		JitterKm:         1.5,
		NearBandKm:       10,
		MidBandKm:        20,
		DaytimeStartHour: 6,
		DaytimeEndHour:   18,
	}
}

// IsDaytime reports whether a window starting at c counts as daytime.
func (s Settings) IsDaytime(c experience.ClockTime) bool {
	h := c.Hour()
	return h >= s.DaytimeStartHour && h < s.DaytimeEndHour
}

// MatchesTimeOfDay applies the traveler's time-of-day preference to a window.
func (s Settings) MatchesTimeOfDay(pref TimeOfDay, w experience.TimeWindow) bool {
	switch pref {
	case TimeDaytime:
		return s.IsDaytime(w.Start)
	case TimeNighttime:
		return !s.IsDaytime(w.Start)
	default:
		return true
	}
}

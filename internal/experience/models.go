package experience

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StatusActive is the only lifecycle status eligible for planning.
const StatusActive = "active"

// ClockTime is a time of day in minutes since midnight.
type ClockTime int

func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ClockOf returns the time-of-day component of t in its own location.
func ClockOf(t time.Time) ClockTime {
	return Clock(t.Hour(), t.Minute())
}

// ParseClock accepts "HH:MM" and "HH:MM:SS".
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	second := 0
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}
	if hour == 24 && (minute != 0 || second != 0) {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	// Seconds are validated but dropped; clocks have minute resolution.
	return Clock(hour, minute), nil
}

func (c ClockTime) Hour() int {
	return int(c) / 60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add shifts the clock by d, truncated to whole minutes.
func (c ClockTime) Add(d time.Duration) ClockTime {
	return c + ClockTime(d/time.Minute)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TimeWindow is a bookable start/end pair on a single day.
type TimeWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// ParseWindow parses "HH:MM-HH:MM".
func ParseWindow(s string) (TimeWindow, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return TimeWindow{}, fmt.Errorf("invalid time window %q", s)
	}
	return NewWindow(start, end)
}

// NewWindow builds a window from two clock strings and checks start < end.
func NewWindow(start, end string) (TimeWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeWindow{}, err
	}
	w := TimeWindow{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

func (w TimeWindow) Validate() error {
	if w.Start >= w.End {
		return fmt.Errorf("time window %s must start before it ends", w)
	}
	return nil
}

func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// ParseWeekday accepts full or three-letter English day names in any case.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || (len(n) == 3 && strings.HasPrefix(full, n)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// Weekly maps a weekday to its bookable windows.
type Weekly map[time.Weekday][]TimeWindow

type Experience struct {
	ID                   string   `json:"id"`
	CreatorID            string   `json:"created_by"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Price                float64  `json:"price"`
	PricingUnit          string   `json:"pricing_unit"`
	Status               string   `json:"status"`
	Area                 string   `json:"area"`
	Companions           []string `json:"companions"`
	Tags                 []string `json:"tags"`
	Lat                  *float64 `json:"lat,omitempty"`
	Lng                  *float64 `json:"lng,omitempty"`
	DistanceFromCenterKm *float64 `json:"distance_from_center_km,omitempty"`
	Availability         Weekly   `json:"-"`
}

func (e Experience) IsActive() bool {
	return strings.EqualFold(e.Status, StatusActive)
}

// HasCoordinates reports whether the destination point is recorded.
func (e Experience) HasCoordinates() bool {
	return e.Lat != nil && e.Lng != nil
}

// AvailableOn reports whether at least one window exists on day.
func (e Experience) AvailableOn(day time.Weekday) bool {
	return len(e.Availability[day]) > 0
}

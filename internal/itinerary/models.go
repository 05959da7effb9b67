package itinerary

import (
	"time"

	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/planner"
)

const (
	StatusPlanned        = "planned"
	BookingStatusPending = "pending"
)

type Itinerary struct {
	ID         string       `json:"id"`
	TravelerID string       `json:"traveler_id"`
	Title      string       `json:"title"`
	Notes      string       `json:"notes,omitempty"`
	Area       string       `json:"area"`
	StartDate  planner.Date `json:"start_date"`
	EndDate    planner.Date `json:"end_date"`
	TotalDays  int          `json:"total_days"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	Items      []Item       `json:"items"`
}

type Item struct {
	ID           string               `json:"id"`
	ItineraryID  string               `json:"itinerary_id"`
	ExperienceID string               `json:"experience_id"`
	Day          int                  `json:"day_number"`
	Start        experience.ClockTime `json:"start_time"`
	End          experience.ClockTime `json:"end_time"`
	Note         string               `json:"note"`
}

// Booking is derived from an item when its itinerary is accepted. It belongs
// to the host that created the experience.
type Booking struct {
	ID           string               `json:"id"`
	ItineraryID  string               `json:"itinerary_id"`
	ItemID       string               `json:"itinerary_item_id"`
	ExperienceID string               `json:"experience_id"`
	TravelerID   string               `json:"traveler_id"`
	HostID       string               `json:"host_id"`
	BookingDate  planner.Date         `json:"booking_date"`
	Start        experience.ClockTime `json:"start_time"`
	End          experience.ClockTime `json:"end_time"`
	TotalPrice   float64              `json:"total_price"`
	Status       string               `json:"status"`
}

type SaveResult struct {
	Itinerary Itinerary `json:"itinerary"`
	Bookings  []Booking `json:"bookings"`
}

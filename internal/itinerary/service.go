package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend-itinerary/internal/db"
	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/metrics"
	"backend-itinerary/internal/planner"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound          = errors.New("itinerary not found")
	ErrUnknownExperience = errors.New("unknown experience")
)

// Store persists accepted drafts together with their bookings.
type Store struct {
	db      db.TxQuerier
	metrics *metrics.Collector
}

func NewStore(db db.TxQuerier, m *metrics.Collector) *Store {
	return &Store{db: db, metrics: m}
}

// Save writes the itinerary, its items and one booking per item in a single
// transaction. Hosts and prices come from the catalog, not from the draft.
func (s *Store) Save(ctx context.Context, d planner.Draft) (SaveResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return SaveResult{}, fmt.Errorf("begin itinerary tx: %w", err)
	}

	result, err := s.save(ctx, tx, d)
	if err != nil {
		_ = tx.Rollback(ctx)
		return SaveResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return SaveResult{}, fmt.Errorf("commit itinerary: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ItinerariesSaved.Inc()
		s.metrics.BookingsCreated.Add(float64(len(result.Bookings)))
	}
	return result, nil
}

func (s *Store) save(ctx context.Context, tx pgx.Tx, d planner.Draft) (SaveResult, error) {
	it := Itinerary{
		ID:         uuid.NewString(),
		TravelerID: d.TravelerID,
		Title:      d.Title,
		Notes:      d.Notes,
		Area:       d.Area,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		TotalDays:  d.StartDate.DaysThrough(d.EndDate),
		Status:     StatusPlanned,
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO itineraries (id, traveler_id, title, notes, area, start_date, end_date, total_days, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`, it.ID, it.TravelerID, it.Title, it.Notes, it.Area, it.StartDate.Time(), it.EndDate.Time(), it.TotalDays, it.Status)
	if err := row.Scan(&it.CreatedAt); err != nil {
		return SaveResult{}, fmt.Errorf("insert itinerary: %w", err)
	}

	bookings := make([]Booking, 0, len(d.Items))
	for _, di := range d.Items {
		var hostID, status string
		var price float64
		err := tx.QueryRow(ctx, `SELECT created_by, price, status FROM experiences WHERE id=$1`, di.ExperienceID).Scan(&hostID, &price, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return SaveResult{}, fmt.Errorf("%w: %s", ErrUnknownExperience, di.ExperienceID)
		}
		if err != nil {
			return SaveResult{}, fmt.Errorf("lookup experience %s: %w", di.ExperienceID, err)
		}
		if !strings.EqualFold(status, experience.StatusActive) {
			return SaveResult{}, fmt.Errorf("%w: %s is %s", ErrUnknownExperience, di.ExperienceID, status)
		}
		if err := checkSlot(ctx, tx, d.StartDate.AddDays(di.Day-1), di); err != nil {
			return SaveResult{}, err
		}

		item := Item{
			ID:           uuid.NewString(),
			ItineraryID:  it.ID,
			ExperienceID: di.ExperienceID,
			Day:          di.Day,
			Start:        di.Start,
			End:          di.End,
			Note:         di.Note,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO itinerary_items (id, itinerary_id, experience_id, day_number, start_time, end_time, notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, item.ID, item.ItineraryID, item.ExperienceID, item.Day, item.Start.String(), item.End.String(), item.Note)
		if err != nil {
			return SaveResult{}, fmt.Errorf("insert itinerary item: %w", err)
		}

		booking := Booking{
			ID:           uuid.NewString(),
			ItineraryID:  it.ID,
			ItemID:       item.ID,
			ExperienceID: item.ExperienceID,
			TravelerID:   it.TravelerID,
			HostID:       hostID,
			BookingDate:  d.StartDate.AddDays(item.Day - 1),
			Start:        item.Start,
			End:          item.End,
			TotalPrice:   price,
			Status:       BookingStatusPending,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO bookings (id, itinerary_id, itinerary_item_id, experience_id, traveler_id, host_id, booking_date, start_time, end_time, total_price, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, booking.ID, booking.ItineraryID, booking.ItemID, booking.ExperienceID, booking.TravelerID, booking.HostID,
			booking.BookingDate.Time(), booking.Start.String(), booking.End.String(), booking.TotalPrice, booking.Status)
		if err != nil {
			return SaveResult{}, fmt.Errorf("insert booking: %w", err)
		}

		it.Items = append(it.Items, item)
		bookings = append(bookings, booking)
	}
	return SaveResult{Itinerary: it, Bookings: bookings}, nil
}

// checkSlot requires the item's window to be one the host offers on that
// date's weekday. Weekdays are stored by name, full or abbreviated.
func checkSlot(ctx context.Context, tx pgx.Tx, date planner.Date, item planner.Item) error {
	var offered bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM experience_availability
			WHERE experience_id=$1 AND left(lower(weekday), 3)=$2
			  AND start_time=$3::time AND end_time=$4::time
		)
	`, item.ExperienceID, weekdayKey(date.Weekday()), item.Start.String(), item.End.String()).Scan(&offered)
	if err != nil {
		return fmt.Errorf("lookup availability %s: %w", item.ExperienceID, err)
	}
	if !offered {
		return fmt.Errorf("%w: %s is not offered %s %s-%s", planner.ErrInvalidDraft,
			item.ExperienceID, date.Weekday(), item.Start, item.End)
	}
	return nil
}

func weekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String()[:3])
}

func (s *Store) Get(ctx context.Context, id string) (Itinerary, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, traveler_id, title, notes, area, start_date, end_date, total_days, status, created_at
		FROM itineraries WHERE id=$1
	`, id)
	var it Itinerary
	var startDate, endDate time.Time
	if err := row.Scan(&it.ID, &it.TravelerID, &it.Title, &it.Notes, &it.Area, &startDate, &endDate, &it.TotalDays, &it.Status, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Itinerary{}, ErrNotFound
		}
		return Itinerary{}, fmt.Errorf("load itinerary: %w", err)
	}
	it.StartDate = planner.DateOf(startDate)
	it.EndDate = planner.DateOf(endDate)

	rows, err := s.db.Query(ctx, `
		SELECT id, itinerary_id, experience_id, day_number, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), notes
		FROM itinerary_items WHERE itinerary_id=$1
		ORDER BY day_number, start_time
	`, id)
	if err != nil {
		return Itinerary{}, fmt.Errorf("load itinerary items: %w", err)
	}
	defer rows.Close()

	it.Items = []Item{}
	for rows.Next() {
		var item Item
		var start, end string
		if err := rows.Scan(&item.ID, &item.ItineraryID, &item.ExperienceID, &item.Day, &start, &end, &item.Note); err != nil {
			return Itinerary{}, err
		}
		if item.Start, err = experience.ParseClock(start); err != nil {
			return Itinerary{}, err
		}
		if item.End, err = experience.ParseClock(end); err != nil {
			return Itinerary{}, err
		}
		it.Items = append(it.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Itinerary{}, err
	}
	return it, nil
}

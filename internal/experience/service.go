package experience

import (
	"context"
	"fmt"
	"slices"

	"backend-itinerary/internal/db"

	"golang.org/x/sync/errgroup"
)

// Service reads the experience catalog from Postgres.
type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

type availabilityRow struct {
	ExperienceID string
	Weekday      string
	Start        string
	End          string
}

// ActiveExperiences returns every active experience with tags, companion types
// and weekly availability. The experience and availability reads are independent
// and run concurrently; both complete before anything is returned.
func (s *Service) ActiveExperiences(ctx context.Context) ([]Experience, error) {
	var (
		experiences []Experience
		slots       []availabilityRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.loadExperiences(gctx)
		if err != nil {
			return fmt.Errorf("load experiences: %w", err)
		}
		experiences = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.loadAvailability(gctx)
		if err != nil {
			return fmt.Errorf("load availability: %w", err)
		}
		slots = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(experiences))
	for i := range experiences {
		index[experiences[i].ID] = i
	}
	for _, slot := range slots {
		i, ok := index[slot.ExperienceID]
		if !ok {
			continue
		}
		day, err := ParseWeekday(slot.Weekday)
		if err != nil {
			return nil, fmt.Errorf("experience %s: %w", slot.ExperienceID, err)
		}
		window, err := NewWindow(slot.Start, slot.End)
		if err != nil {
			return nil, fmt.Errorf("experience %s: %w", slot.ExperienceID, err)
		}
		exp := &experiences[i]
		if exp.Availability == nil {
			exp.Availability = Weekly{}
		}
		exp.Availability[day] = append(exp.Availability[day], window)
	}
	for i := range experiences {
		for day, windows := range experiences[i].Availability {
			slices.SortFunc(windows, func(a, b TimeWindow) int { return int(a.Start - b.Start) })
			experiences[i].Availability[day] = windows
		}
	}
	return experiences, nil
}

func (s *Service) loadExperiences(ctx context.Context) ([]Experience, error) {
	rows, err := s.db.Query(ctx, `
		SELECT e.id, e.created_by, e.title, COALESCE(e.description,''), e.price, COALESCE(e.pricing_unit,''),
		       e.status, COALESCE(e.area,''), e.latitude, e.longitude, e.distance_from_center_km,
		       COALESCE(e.companion_types, '{}'),
		       COALESCE(array_agg(t.name) FILTER (WHERE t.name IS NOT NULL), '{}')
		FROM experiences e
		LEFT JOIN experience_tags et ON et.experience_id = e.id
		LEFT JOIN tags t ON t.id = et.tag_id
		WHERE e.status = $1
		GROUP BY e.id
		ORDER BY e.id
	`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiences []Experience
	for rows.Next() {
		var e Experience
		if err := rows.Scan(&e.ID, &e.CreatorID, &e.Title, &e.Description, &e.Price, &e.PricingUnit,
			&e.Status, &e.Area, &e.Lat, &e.Lng, &e.DistanceFromCenterKm, &e.Companions, &e.Tags); err != nil {
			return nil, err
		}
		experiences = append(experiences, e)
	}
	return experiences, rows.Err()
}

func (s *Service) loadAvailability(ctx context.Context) ([]availabilityRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.experience_id, a.weekday, to_char(a.start_time, 'HH24:MI'), to_char(a.end_time, 'HH24:MI')
		FROM experience_availability a
		JOIN experiences e ON e.id = a.experience_id
		WHERE e.status = $1
		ORDER BY a.experience_id, a.start_time
	`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []availabilityRow
	for rows.Next() {
		var r availabilityRow
		if err := rows.Scan(&r.ExperienceID, &r.Weekday, &r.Start, &r.End); err != nil {
			return nil, err
		}
		slots = append(slots, r)
	}
	return slots, rows.Err()
}

package planner

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/metrics"
	"backend-itinerary/internal/shared/geo"

	"github.com/rs/zerolog"
)

// Catalog supplies a snapshot of the active experiences.
type Catalog interface {
	ActiveExperiences(ctx context.Context) ([]experience.Experience, error)
}

// Resolver maps free-text area names to reference coordinates.
type Resolver interface {
	Normalize(area string) string
	BaseName(area string) string
	Resolve(area string) (geo.Point, bool)
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type Option func(*Engine)

func WithSettings(s Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithClock sets the source of "now". Its location decides what today is.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithSeed makes every generation replay the same random sequence.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.source = func() rand.Source { return rand.NewSource(seed) }
	}
}

func WithRandSource(fn func() rand.Source) Option {
	return func(e *Engine) { e.source = fn }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine generates itinerary drafts from traveler preferences.
type Engine struct {
	catalog  Catalog
	resolver Resolver
	settings Settings
	clock    Clock
	source   func() rand.Source
	log      zerolog.Logger
	metrics  *metrics.Collector
}

func NewEngine(catalog Catalog, resolver Resolver, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		resolver: resolver,
		settings: DefaultSettings(),
		clock:    ClockFunc(time.Now),
		source:   func() rand.Source { return rand.NewSource(time.Now().UnixNano()) },
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Generate validates prefs and builds a draft itinerary for travelerID. The
// catalog is read once; everything after that runs in memory.
func (e *Engine) Generate(ctx context.Context, travelerID string, prefs Preferences) (Draft, error) {
	started := time.Now()
	prefs = prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		return Draft{}, err
	}

	experiences, err := e.catalog.ActiveExperiences(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("load experiences: %w", err)
	}

	point, resolved := e.resolver.Resolve(prefs.Area)
	ref := Reference{Point: point, Resolved: resolved, AreaText: e.resolver.BaseName(prefs.Area)}
	log := e.log.With().Str("traveler_id", travelerID).Str("area", prefs.Area).Logger()
	if !resolved {
		log.Warn().Str("match", ref.AreaText).Msg("area has no known coordinate, matching on area text")
		if e.metrics != nil {
			e.metrics.ResolverFallbacks.Inc()
		}
	}

	candidates, breakdown := BuildCandidates(experiences, prefs, ref, e.settings)
	if len(candidates) == 0 {
		log.Info().Interface("breakdown", breakdown).Msg("no experiences matched preferences")
		if e.metrics != nil {
			e.metrics.EmptyResults.Inc()
		}
		return Draft{}, &NoCandidatesError{Breakdown: breakdown}
	}

	policy := prefs.Distance
	if !resolved {
		policy = ""
	}

	now := e.clock.Now()
	today := DateOf(now)
	rng := rand.New(e.source())
	availability := NewAvailability(candidates)

	used := Used{}
	days := make([]DayResult, 0, prefs.TotalDays())
	for d := 1; d <= prefs.TotalDays(); d++ {
		date := prefs.StartDate.AddDays(d - 1)
		var result DayResult
		result, used = PlanDay(DayInput{
			Day:          d,
			Date:         date,
			Candidates:   candidates,
			Availability: availability,
			TimeOfDay:    prefs.TimeOfDay,
			Intensity:    prefs.Intensity,
			Policy:       policy,
			IsToday:      date.Equal(today),
			Now:          experience.ClockOf(now),
			Rand:         rng,
			Settings:     e.settings,
		}, used)
		if s, short := result.Shortfall(); short {
			log.Warn().Int("day", s.Day).Int("quota", s.Quota).Int("scheduled", s.Scheduled).Msg("day below quota")
			if e.metrics != nil {
				e.metrics.DayShortfalls.Inc()
			}
		}
		days = append(days, result)
	}

	draft := Assemble(DraftMeta{
		Title:             prefs.Title,
		Notes:             prefs.Notes,
		TravelerID:        travelerID,
		Area:              e.resolver.Normalize(prefs.Area),
		StartDate:         prefs.StartDate,
		EndDate:           prefs.EndDate,
		ReferenceResolved: resolved,
		GeneratedAt:       now,
	}, days)

	if e.metrics != nil {
		e.metrics.DraftsGenerated.Inc()
		e.metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	}
	log.Debug().Int("items", len(draft.Items)).Int("candidates", len(candidates)).Msg("draft generated")
	return draft, nil
}

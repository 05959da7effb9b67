package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/gazetteer"
	"backend-itinerary/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCatalog struct{}

func (failingCatalog) ActiveExperiences(context.Context) ([]experience.Experience, error) {
	return nil, errors.New("connection refused")
}

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	catalog := experience.NewStaticCatalog(loadBacolod(t))
	base := []Option{
		WithSeed(42),
		WithClock(fixedClock(time.Date(2025, time.May, 20, 9, 0, 0, 0, time.UTC))),
	}
	return NewEngine(catalog, gazetteer.Default(), append(base, opts...)...)
}

func quota(intensity Intensity) func(int) int {
	return func(int) int { return DailyQuota(intensity, false, 0, DefaultSettings()) }
}

func TestGenerateRoundTripBacolod(t *testing.T) {
	e := newTestEngine(t)
	d, err := e.Generate(context.Background(), "traveler-1", sampleRoundTripPrefs())
	require.NoError(t, err)

	assert.Equal(t, "Bacolod City - 2025-06-01 to 2025-06-02", d.Title)
	assert.Equal(t, "Bacolod City", d.Area)
	assert.Equal(t, "traveler-1", d.TravelerID)
	assert.Equal(t, 2, d.TotalDays)
	assert.True(t, d.ReferenceResolved)
	requireDraftInvariants(t, d, quota(IntensityModerate))

	assert.Equal(t, []string{"exp-heritage", "exp-ruins", "exp-cooking"}, itemIDs(d.Items))
	assert.Equal(t, []int{1, 1, 2}, []int{d.Items[0].Day, d.Items[1].Day, d.Items[2].Day})
	assert.Equal(t, NewDate(2025, time.June, 2), d.Items[2].Date)
	assert.Len(t, d.Shortfalls, 2)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Distance = DistanceFar
	prefs.Companions = []string{CompanionAny}
	prefs.Intensity = IntensityHigh
	prefs.EndDate = NewDate(2025, time.June, 7)

	first, err := newTestEngine(t).Generate(context.Background(), "t", prefs)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := newTestEngine(t).Generate(context.Background(), "t", prefs)
		require.NoError(t, err)
		assert.Equal(t, first.Items, again.Items)
	}
}

func TestGenerateInvariantsAcrossSeeds(t *testing.T) {
	policies := []DistancePreference{DistanceNearby, DistanceModerate, DistanceFar}
	intensities := []Intensity{IntensityLow, IntensityModerate, IntensityHigh}

	for seed := int64(0); seed < 25; seed++ {
		for _, policy := range policies {
			for _, intensity := range intensities {
				prefs := sampleRoundTripPrefs()
				prefs.Companions = []string{CompanionAny}
				prefs.Distance = policy
				prefs.Intensity = intensity
				prefs.EndDate = NewDate(2025, time.June, 7)

				d, err := newTestEngine(t, WithSeed(seed)).Generate(context.Background(), "t", prefs)
				require.NoError(t, err)
				requireDraftInvariants(t, d, quota(intensity))
			}
		}
	}
}

func TestGenerateTodayAfterLateHour(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	now := time.Date(2025, time.June, 1, 16, 0, 0, 0, manila)

	e := newTestEngine(t, WithClock(fixedClock(now)))
	d, err := e.Generate(context.Background(), "t", sampleRoundTripPrefs())
	require.NoError(t, err)

	var day1 []Item
	for _, item := range d.Items {
		if item.Day == 1 {
			day1 = append(day1, item)
			assert.Greater(t, item.Start, experience.Clock(16, 0))
		}
	}
	assert.Len(t, day1, 1, "quota halves to 1 after 15:00 today")
	assert.Equal(t, "exp-ruins", day1[0].ExperienceID)
	requireDraftInvariants(t, d, func(day int) int {
		if day == 1 {
			return 1
		}
		return 3
	})
}

func TestGenerateUnknownAreaFallsBack(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Area = "negros_occidental"
	prefs.Distance = DistanceFar

	collector := metrics.NewCollector("test")
	d, err := newTestEngine(t, WithMetrics(collector)).Generate(context.Background(), "t", prefs)
	require.NoError(t, err)
	assert.False(t, d.ReferenceResolved)
	assert.NotEmpty(t, d.Items)
	for _, item := range d.Items {
		assert.Nil(t, item.DistanceKm)
	}
	requireDraftInvariants(t, d, quota(IntensityModerate))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.ResolverFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.DraftsGenerated))
}

func TestGenerateNoMatchingArea(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Area = "Atlantis"
	prefs.Distance = DistanceFar

	_, err := newTestEngine(t).Generate(context.Background(), "t", prefs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoExperiences))
}

func TestGenerateFreeBudgetIsEmpty(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Budget = BudgetFree

	collector := metrics.NewCollector("test")
	_, err := newTestEngine(t, WithMetrics(collector)).Generate(context.Background(), "t", prefs)
	require.Error(t, err)

	var empty *NoCandidatesError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 0, empty.Breakdown.Budget)
	assert.Equal(t, 3, empty.Breakdown.TimeOfDay)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.EmptyResults))
}

func TestGenerateRejectsInvalidPreferences(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.StartDate, prefs.EndDate = prefs.EndDate, prefs.StartDate
	prefs.Intensity = "Extreme"

	_, err := newTestEngine(t).Generate(context.Background(), "t", prefs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPreferences))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 2)
}

func TestGenerateCatalogError(t *testing.T) {
	e := NewEngine(failingCatalog{}, gazetteer.Default(), WithSeed(1))
	_, err := e.Generate(context.Background(), "t", sampleRoundTripPrefs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load experiences")
	assert.False(t, errors.Is(err, ErrNoExperiences))
}

func TestGenerateRecordsShortfalls(t *testing.T) {
	collector := metrics.NewCollector("test")
	_, err := newTestEngine(t, WithMetrics(collector)).Generate(context.Background(), "t", sampleRoundTripPrefs())
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.DayShortfalls))
}

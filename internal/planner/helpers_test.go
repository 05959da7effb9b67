package planner

import (
	"sort"
	"testing"
	"time"

	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/gazetteer"

	"github.com/stretchr/testify/require"
)

const fixturePath = "../experience/testdata/bacolod.yaml"

func loadBacolod(t *testing.T) []experience.Experience {
	t.Helper()
	exps, err := experience.LoadFixtureFile(fixturePath)
	require.NoError(t, err)
	return exps
}

func bacolodRef(t *testing.T) Reference {
	t.Helper()
	p, ok := gazetteer.Default().Resolve("Bacolod")
	require.True(t, ok)
	return Reference{Point: p, Resolved: true, AreaText: "Bacolod"}
}

func sampleRoundTripPrefs() Preferences {
	return Preferences{
		Area:       "Bacolod",
		StartDate:  NewDate(2025, time.June, 1),
		EndDate:    NewDate(2025, time.June, 2),
		Companions: []string{CompanionFamily},
		TimeOfDay:  TimeBoth,
		Budget:     BudgetAny,
		Intensity:  IntensityModerate,
		Distance:   DistanceNearby,
	}
}

func candidateIDs(cands []Candidate) []string {
	ids := make([]string, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.ID())
	}
	return ids
}

func sortedIDs(cands []Candidate) []string {
	ids := candidateIDs(cands)
	sort.Strings(ids)
	return ids
}

func window(t *testing.T, s string) experience.TimeWindow {
	t.Helper()
	w, err := experience.ParseWindow(s)
	require.NoError(t, err)
	return w
}

func km(v float64) *float64 { return &v }

func candidateAt(id string, distance *float64, weekly experience.Weekly) Candidate {
	return Candidate{
		Experience: experience.Experience{ID: id, Title: id, Status: experience.StatusActive, Availability: weekly},
		DistanceKm: distance,
	}
}

// requireDraftInvariants checks no-repeat, no-conflict, ordering and day bounds.
func requireDraftInvariants(t *testing.T, d Draft, quotaFor func(day int) int) {
	t.Helper()
	require.NoError(t, VerifyDraft(d, 30*time.Minute))

	perDay := map[int]int{}
	for _, item := range d.Items {
		perDay[item.Day]++
	}
	for day, n := range perDay {
		require.LessOrEqualf(t, n, quotaFor(day), "day %d over quota", day)
	}
}

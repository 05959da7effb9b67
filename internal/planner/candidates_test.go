package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCandidatesNearbyBacolod(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	cands, b := BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())

	assert.Equal(t, []string{"exp-cooking", "exp-heritage", "exp-ruins"}, sortedIDs(cands))
	for _, c := range cands {
		if c.ID() == "exp-cooking" {
			assert.Nil(t, c.DistanceKm, "cooking class has no coordinates")
			continue
		}
		require.NotNil(t, c.DistanceKm)
		assert.LessOrEqual(t, *c.DistanceKm, 10.0)
	}

	assert.Equal(t, Breakdown{
		Active:            5,
		Area:              3,
		Companion:         3,
		Availability:      3,
		TimeOfDay:         3,
		Budget:            3,
		Category:          3,
		ReferenceResolved: true,
	}, b)
}

func TestBuildCandidatesUsesDistanceFromCenter(t *testing.T) {
	exps := loadBacolod(t)
	for i := range exps {
		if exps[i].ID == "exp-cooking" {
			exps[i].DistanceFromCenterKm = km(25)
		}
	}
	cands, _ := BuildCandidates(exps, sampleRoundTripPrefs(), bacolodRef(t), DefaultSettings())
	assert.Equal(t, []string{"exp-heritage", "exp-ruins"}, sortedIDs(cands))
}

func TestBuildCandidatesFallsBackToAreaText(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Area = "silay"
	ref := Reference{Resolved: false, AreaText: "Silay"}

	cands, b := BuildCandidates(loadBacolod(t), prefs, ref, DefaultSettings())
	assert.Equal(t, []string{"exp-balay", "exp-cooking"}, sortedIDs(cands))
	assert.False(t, b.ReferenceResolved)
	for _, c := range cands {
		assert.Nil(t, c.DistanceKm)
	}
}

func TestBuildCandidatesCompanionAny(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Companions = []string{CompanionSolo}
	prefs.Distance = DistanceFar

	cands, _ := BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())
	assert.Equal(t, []string{"exp-balay", "exp-heritage", "exp-mambukal"}, sortedIDs(cands))

	prefs.Companions = []string{CompanionAny}
	cands, _ = BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())
	assert.Len(t, cands, 5)
}

func TestBuildCandidatesWeekdayAvailability(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Distance = DistanceFar
	prefs.StartDate = NewDate(2025, time.June, 5)
	prefs.EndDate = NewDate(2025, time.June, 5)

	cands, b := BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())
	assert.Equal(t, []string{"exp-heritage"}, candidateIDs(cands))
	assert.Equal(t, 1, b.Availability)
}

func TestBuildCandidatesTimeOfDay(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Distance = DistanceFar
	prefs.TimeOfDay = TimeNighttime

	cands, _ := BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())
	assert.Equal(t, []string{"exp-ruins"}, candidateIDs(cands))
}

func TestBuildCandidatesBudgetTiers(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Distance = DistanceFar
	prefs.Companions = []string{CompanionAny}

	cases := map[Budget][]string{
		BudgetBudget:   {"exp-balay", "exp-heritage", "exp-mambukal", "exp-ruins"},
		BudgetMidRange: {"exp-balay", "exp-cooking", "exp-heritage", "exp-mambukal", "exp-ruins"},
		BudgetPremium:  {},
		BudgetAny:      {"exp-balay", "exp-cooking", "exp-heritage", "exp-mambukal", "exp-ruins"},
	}
	for budget, want := range cases {
		prefs.Budget = budget
		cands, _ := BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())
		assert.Equal(t, want, sortedIDs(cands), "budget %s", budget)
	}
}

func TestBuildCandidatesFreeBudgetIsEmpty(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Budget = BudgetFree

	cands, b := BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())
	assert.Empty(t, cands)
	assert.Equal(t, 3, b.TimeOfDay)
	assert.Equal(t, 0, b.Budget)
	assert.Contains(t, b.Suggestion, "budget")
}

func TestBuildCandidatesCategories(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Categories = []string{"food"}

	cands, _ := BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())
	assert.Equal(t, []string{"exp-cooking"}, candidateIDs(cands))
}

func TestBuildCandidatesModerateRadius(t *testing.T) {
	prefs := sampleRoundTripPrefs()
	prefs.Distance = DistanceModerate
	prefs.Companions = []string{CompanionAny}

	cands, _ := BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), DefaultSettings())
	assert.Equal(t, []string{"exp-balay", "exp-cooking", "exp-heritage", "exp-mambukal", "exp-ruins"}, sortedIDs(cands))

	s := DefaultSettings()
	s.ModerateRadiusKm = 20
	cands, _ = BuildCandidates(loadBacolod(t), prefs, bacolodRef(t), s)
	assert.NotContains(t, candidateIDs(cands), "exp-mambukal")
}

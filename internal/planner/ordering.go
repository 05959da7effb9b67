package planner

import (
	"math/rand"
	"slices"
)

// OrderPool returns a reordered copy of pool according to the travel-distance
// policy. Unrecognized policies get a full shuffle.
func OrderPool(pool []Candidate, policy DistancePreference, rng *rand.Rand, s Settings) []Candidate {
	out := slices.Clone(pool)
	switch policy {
	case DistanceNearby:
		slices.SortStableFunc(out, func(a, b Candidate) int {
			return compareDistance(a.DistanceKm, b.DistanceKm)
		})
	case DistanceModerate:
		keys := make(map[string]float64, len(out))
		for _, c := range out {
			if c.DistanceKm != nil {
				keys[c.ID()] = *c.DistanceKm + (rng.Float64()*2-1)*s.JitterKm
			}
		}
		slices.SortStableFunc(out, func(a, b Candidate) int {
			ka, okA := keys[a.ID()]
			kb, okB := keys[b.ID()]
			switch {
			case okA && okB:
				return compareFloat(ka, kb)
			case okA:
				return -1
			case okB:
				return 1
			}
			return 0
		})
	case DistanceFar:
		var far, mid, near, unknown []Candidate
		for _, c := range out {
			switch {
			case c.DistanceKm == nil:
				unknown = append(unknown, c)
			case *c.DistanceKm > s.MidBandKm:
				far = append(far, c)
			case *c.DistanceKm > s.NearBandKm:
				mid = append(mid, c)
			default:
				near = append(near, c)
			}
		}
		out = out[:0]
		for _, band := range [][]Candidate{far, mid, near, unknown} {
			shuffle(band, rng)
			out = append(out, band...)
		}
	default:
		shuffle(out, rng)
	}
	return out
}

func shuffle(pool []Candidate, rng *rand.Rand) {
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
}

// compareDistance orders known distances ascending with unknown last.
func compareDistance(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compareFloat(*a, *b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

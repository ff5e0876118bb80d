// This file holds the balancing engine: pure functions over rosters,
// no I/O, no clock, no randomness.
package domain

import (
	"math"
	"sort"

	"mix-lab/errors"

	"github.com/samber/lo"
)

// Team is an ordered half of a balanced roster.
// Positions are stable: swaps replace in place, they never reorder.
type Team []Participant

// TeamStats summarizes one team for display and comparison.
type TeamStats struct {
	Total   int
	Average float64 // rounded to one decimal
	Size    int
}

// Balance splits a full roster into two teams of equal size with a
// greedy descent: walk the players from highest to lowest rating and
// hand each one to team A, unless A is full or B still has room while
// being strictly lighter.
//
// The sort is stable, so players with equal ratings keep their join
// order and the same input always produces the same teams.
func Balance(roster Roster, required int) (Team, Team, error) {
	if required < 2 || required%2 != 0 || len(roster) != required {
		return nil, nil, errors.ErrRosterSize
	}

	sorted := make(Roster, len(roster))
	copy(sorted, roster)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	size := required / 2
	teamA := make(Team, 0, size)
	teamB := make(Team, 0, size)
	totalA, totalB := 0, 0

	for _, p := range sorted {
		if len(teamA) < size && (len(teamB) >= size || totalA <= totalB) {
			teamA = append(teamA, p)
			totalA += p.Rating
		} else {
			teamB = append(teamB, p)
			totalB += p.Rating
		}
	}
	return teamA, teamB, nil
}

// Stats computes the display summary of one team.
// An empty team reports zero everywhere, including the average.
func (t Team) Stats() TeamStats {
	if len(t) == 0 {
		return TeamStats{}
	}
	total := 0
	for _, p := range t {
		total += p.Rating
	}
	average := float64(total) / float64(len(t))
	return TeamStats{
		Total:   total,
		Average: math.Round(average*10) / 10,
		Size:    len(t),
	}
}

// RatingGap is the absolute difference between both team totals.
func RatingGap(a, b Team) int {
	gap := a.Stats().Total - b.Stats().Total
	if gap < 0 {
		gap = -gap
	}
	return gap
}

// SwapPlayers exchanges one player of each team without moving their
// slots. Lookups are team scoped: the first id must already play in a,
// the second in b. Inputs are never mutated.
func SwapPlayers(a, b Team, idA, idB string) (Team, Team, error) {
	_, posA, _ := lo.FindIndexOf(a, func(p Participant) bool { return p.ID == idA })
	_, posB, _ := lo.FindIndexOf(b, func(p Participant) bool { return p.ID == idB })
	if posA < 0 || posB < 0 {
		return nil, nil, errors.ErrPlayerNotFound
	}

	nextA := make(Team, len(a))
	nextB := make(Team, len(b))
	copy(nextA, a)
	copy(nextB, b)
	nextA[posA], nextB[posB] = nextB[posB], nextA[posA]
	return nextA, nextB, nil
}

// Rebalance rebuilds both teams from scratch, typically after swaps
// made the split look unfair. The merged input keeps a-then-b order so
// the run stays deterministic.
func Rebalance(a, b Team, required int) (Team, Team, error) {
	merged := make(Roster, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return Balance(merged, required)
}

package domain

import (
	"testing"

	"mix-lab/errors"

	"github.com/stretchr/testify/require"
)

func player(id string, rating int) Participant {
	return Participant{ID: id, Name: "name-" + id, Nickname: "nick-" + id, Rating: rating}
}

func TestBalance_FourPlayers_PerfectSplit(t *testing.T) {
	roster := Roster{player("u1", 100), player("u2", 90), player("u3", 80), player("u4", 70)}

	teamA, teamB, err := Balance(roster, 4)

	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u4"}, Roster(teamA).IDs())
	require.Equal(t, []string{"u2", "u3"}, Roster(teamB).IDs())
	require.Equal(t, 170, teamA.Stats().Total)
	require.Equal(t, 170, teamB.Stats().Total)
	require.Equal(t, 0, RatingGap(teamA, teamB))
}

func TestBalance_TenPlayers_GreedyDescent(t *testing.T) {
	req := require.New(t)
	ratings := []int{2100, 1950, 1800, 1700, 1650, 1500, 1450, 1300, 1200, 1100}
	roster := make(Roster, 0, len(ratings))
	for i, rating := range ratings {
		roster = append(roster, player(string(rune('a'+i)), rating))
	}

	teamA, teamB, err := Balance(roster, 10)

	req.NoError(err)
	req.Equal(7850, teamA.Stats().Total)
	req.Equal(7900, teamB.Stats().Total)
	req.Equal(50, RatingGap(teamA, teamB))
	req.Len(teamA, 5)
	req.Len(teamB, 5)

	// Highest rated player always opens team A.
	req.Equal(2100, teamA[0].Rating)
}

func TestBalance_RejectsWrongRosterSize(t *testing.T) {
	roster := Roster{player("u1", 100), player("u2", 90), player("u3", 80)}

	_, _, err := Balance(roster, 4)
	require.ErrorIs(t, err, errors.ErrRosterSize)

	_, _, err = Balance(roster, 3)
	require.ErrorIs(t, err, errors.ErrRosterSize)

	_, _, err = Balance(Roster{}, 0)
	require.ErrorIs(t, err, errors.ErrRosterSize)
}

func TestBalance_DeterministicForSameInput(t *testing.T) {
	roster := Roster{
		player("u1", 1500), player("u2", 1500), player("u3", 1500), player("u4", 1500),
	}

	firstA, firstB, err := Balance(roster, 4)
	require.NoError(t, err)
	secondA, secondB, err := Balance(roster, 4)
	require.NoError(t, err)

	require.Equal(t, firstA, secondA)
	require.Equal(t, firstB, secondB)

	// Equal ratings : the stable sort keeps join order.
	require.Equal(t, []string{"u1", "u3"}, Roster(firstA).IDs())
	require.Equal(t, []string{"u2", "u4"}, Roster(firstB).IDs())
}

func TestBalance_DoesNotMutateInput(t *testing.T) {
	roster := Roster{player("u1", 70), player("u2", 100), player("u3", 90), player("u4", 80)}

	_, _, err := Balance(roster, 4)

	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2", "u3", "u4"}, roster.IDs())
}

func TestStats_RoundsAverageToOneDecimal(t *testing.T) {
	team := Team{player("u1", 1333), player("u2", 1333), player("u3", 1334)}

	stats := team.Stats()

	require.Equal(t, 4000, stats.Total)
	require.Equal(t, 1333.3, stats.Average)
	require.Equal(t, 3, stats.Size)

	halves := Team{player("u4", 167), player("u5", 168)}
	require.Equal(t, 167.5, halves.Stats().Average)
}

func TestStats_EmptyTeamReportsZero(t *testing.T) {
	stats := Team{}.Stats()

	require.Equal(t, TeamStats{}, stats)
}

func TestSwapPlayers_KeepsPositions(t *testing.T) {
	req := require.New(t)
	teamA := Team{player("u1", 100), player("u4", 70)}
	teamB := Team{player("u2", 90), player("u3", 80)}

	nextA, nextB, err := SwapPlayers(teamA, teamB, "u4", "u2")

	req.NoError(err)
	req.Equal([]string{"u1", "u2"}, Roster(nextA).IDs())
	req.Equal([]string{"u4", "u3"}, Roster(nextB).IDs())

	// Originals are untouched.
	req.Equal([]string{"u1", "u4"}, Roster(teamA).IDs())
	req.Equal([]string{"u2", "u3"}, Roster(teamB).IDs())
}

func TestSwapPlayers_UnknownPlayer(t *testing.T) {
	teamA := Team{player("u1", 100)}
	teamB := Team{player("u2", 90)}

	_, _, err := SwapPlayers(teamA, teamB, "ghost", "u2")
	require.ErrorIs(t, err, errors.ErrPlayerNotFound)

	// Lookups are team scoped : u2 plays in B, not in A.
	_, _, err = SwapPlayers(teamA, teamB, "u2", "u1")
	require.ErrorIs(t, err, errors.ErrPlayerNotFound)
}

func TestRebalance_RestoresGreedySplit(t *testing.T) {
	req := require.New(t)
	teamA := Team{player("u1", 100), player("u4", 70)}
	teamB := Team{player("u2", 90), player("u3", 80)}

	skewedA, skewedB, err := SwapPlayers(teamA, teamB, "u4", "u2")
	req.NoError(err)
	req.Equal(40, RatingGap(skewedA, skewedB))

	nextA, nextB, err := Rebalance(skewedA, skewedB, 4)
	req.NoError(err)
	req.Equal(0, RatingGap(nextA, nextB))
	req.Equal([]string{"u1", "u4"}, Roster(nextA).IDs())
	req.Equal([]string{"u2", "u3"}, Roster(nextB).IDs())
}

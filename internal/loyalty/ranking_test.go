package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	assert.Equal(t, int64(0), Score(0, 0))
	assert.Equal(t, int64(350), Score(150, 2))

	// Monotonic in both inputs.
	assert.Greater(t, Score(151, 2), Score(150, 2))
	assert.Greater(t, Score(150, 3), Score(150, 2))
}

// makeStandings builds n clients with strictly decreasing scores so
// client i ends up in position i+1.
func makeStandings(n int) []Standing {
	out := make([]Standing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Standing{
			ClientID: uint64(i + 1),
			Points:   int64(1000 - i*10),
		})
	}
	return out
}

func TestComputeTierBoundaries(t *testing.T) {
	standings := makeStandings(10)

	cases := []struct {
		clientID uint64
		position int
		pct      float64
		tier     string
	}{
		{2, 2, 0.20, TierGold},   // exactly 0.20 is still gold
		{3, 3, 0.30, TierSilver},
		{5, 5, 0.50, TierSilver}, // exactly 0.50 is still silver
		{9, 9, 0.90, TierBronze},
	}
	for _, tc := range cases {
		r, err := Compute(standings, tc.clientID)
		require.NoError(t, err)
		assert.Equal(t, tc.position, r.Position, "client %d", tc.clientID)
		assert.InDelta(t, tc.pct, r.Percentile, 1e-9)
		assert.Equal(t, tc.tier, r.Tier)
	}
}

func TestComputeTieBreakByClientID(t *testing.T) {
	// Equal scores; the lower client ID must win the earlier position
	// regardless of input order.
	standings := []Standing{
		{ClientID: 7, Points: 500},
		{ClientID: 3, Points: 500},
		{ClientID: 5, Points: 500},
	}
	r, err := Compute(standings, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Position)

	r, err = Compute(standings, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Position)
}

func TestComputeOrderCountMovesRank(t *testing.T) {
	standings := []Standing{
		{ClientID: 1, Points: 150},
		{ClientID: 2, Points: 100, OrderCount: 1}, // 200 beats 150
	}
	r, err := Compute(standings, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Position)
	assert.Equal(t, int64(200), r.Score)
}

func TestComputeMissingClient(t *testing.T) {
	_, err := Compute(makeStandings(3), 99)
	assert.ErrorIs(t, err, ErrClientNotRanked)

	_, err = Compute(nil, 1)
	assert.ErrorIs(t, err, ErrClientNotRanked)
}

func TestBenefitsAreCumulative(t *testing.T) {
	bronze := Benefits(TierBronze)
	silver := Benefits(TierSilver)
	gold := Benefits(TierGold)

	assert.Equal(t, []string{"basic support"}, bronze)
	assert.Subset(t, silver, bronze)
	assert.Subset(t, gold, silver)
	assert.Contains(t, silver, "priority boarding")
	assert.Contains(t, gold, "flight discounts")
	assert.NotContains(t, silver, "flight discounts")
}

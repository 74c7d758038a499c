package geo

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesizeCoordsDeterministic(t *testing.T) {
	lat1, lon1 := SynthesizeCoords("JFK")
	lat2, lon2 := SynthesizeCoords("JFK")
	assert.Equal(t, lat1, lat2)
	assert.Equal(t, lon1, lon2)
}

func TestSynthesizeCoordsDistinctCodes(t *testing.T) {
	// Not guaranteed in theory, but with a cryptographic hash a batch
	// of common codes colliding would indicate a broken mapping.
	seen := map[string]bool{}
	for _, code := range []string{"JFK", "LAX", "ORD", "WAW", "KRK", "LHR", "CDG", "HND"} {
		lat, lon := SynthesizeCoords(code)
		key := fmt.Sprintf("%.4f/%.4f", lat, lon)
		assert.False(t, seen[key], "collision on %s", code)
		seen[key] = true
	}
}

func TestSynthesizeCoordsBounds(t *testing.T) {
	for i := 0; i < 500; i++ {
		code := fmt.Sprintf("A%03d", i)
		lat, lon := SynthesizeCoords(code)
		assert.GreaterOrEqual(t, lat, LatMin, code)
		assert.LessOrEqual(t, lat, LatMax, code)
		assert.GreaterOrEqual(t, lon, LonMin, code)
		assert.LessOrEqual(t, lon, LonMax, code)
	}
}

func TestSynthesizeCoordsRounded(t *testing.T) {
	lat, lon := SynthesizeCoords("GDN")
	assert.Equal(t, lat, math.Round(lat*10000)/10000)
	assert.Equal(t, lon, math.Round(lon*10000)/10000)
}

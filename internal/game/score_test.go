package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsTiers(t *testing.T) {
	tests := []struct {
		distance float64
		want     int
	}{
		{0, 1000},
		{5, 1000},
		{10, 850},
		{15, 800},
		{22.5, 700},
		{30, 600},
		{45, 450},
		{60, 300},
		{80, 200},
		{100, 100},
		{150, 75},
		{200, 50},
		{350, 25},
		{500, 0},
		{501, 0},
		{1e7, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Points(tt.distance), "distance %.1f", tt.distance)
	}
}

func TestPointsNeverIncreaseWithDistance(t *testing.T) {
	prev := Points(0)
	for d := 0.0; d <= 600; d += 0.5 {
		p := Points(d)
		require.LessOrEqual(t, p, prev, "distance %.1f", d)
		require.GreaterOrEqual(t, p, 0)
		require.LessOrEqual(t, p, MaxPoints)
		prev = p
	}
}

func TestPointsInvalidDistances(t *testing.T) {
	assert.Equal(t, 0, Points(math.Inf(1)))
	assert.Equal(t, 0, Points(math.NaN()))
	assert.Equal(t, 0, Points(-1))
}

func TestDistance(t *testing.T) {
	assert.Zero(t, Distance(2.2945, 48.8584, 2.2945, 48.8584))

	// Paris to London
	d := Distance(2.3522, 48.8566, -0.1276, 51.5072)
	assert.InDelta(t, 343_500, d, 2_000)
	assert.InDelta(t, d, Distance(-0.1276, 51.5072, 2.3522, 48.8566), 1e-6)

	antipodal := Distance(0, 0, 180, 0)
	assert.InDelta(t, math.Pi*EarthRadiusMeters, antipodal, 1)
	assert.False(t, math.IsNaN(Distance(-180, -90, 180, 90)))
}

func TestScoreGuessTakesLongitudeFirst(t *testing.T) {
	distance, points := ScoreGuess(2.2945, 48.8584, eiffel)
	assert.Zero(t, distance)
	assert.Equal(t, MaxPoints, points)

	// Swapped axes land in the Indian Ocean.
	_, points = ScoreGuess(48.8584, 2.2945, eiffel)
	assert.Zero(t, points)
}

func TestRoundedMeters(t *testing.T) {
	assert.Nil(t, roundedMeters(math.Inf(1)))
	assert.Nil(t, roundedMeters(math.NaN()))

	m := roundedMeters(12.6)
	require.NotNil(t, m)
	assert.Equal(t, 13, *m)
}

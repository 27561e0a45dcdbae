package game

import (
	"math"

	"github.com/scythe504/photoguessr-backend/internal"
)

const (
	EarthRadiusMeters = 6371000.0
	MaxPoints         = 1000
)

// scoreTier scores distances up to maxDistance by descending linearly from
// base by drop points across the tier's width.
type scoreTier struct {
	maxDistance float64
	from        float64
	base        float64
	drop        float64
}

var scoreTiers = []scoreTier{
	{maxDistance: 15, from: 5, base: 900, drop: 100},
	{maxDistance: 30, from: 15, base: 800, drop: 200},
	{maxDistance: 60, from: 30, base: 600, drop: 300},
	{maxDistance: 100, from: 60, base: 300, drop: 200},
	{maxDistance: 200, from: 100, base: 100, drop: 50},
	{maxDistance: 500, from: 200, base: 50, drop: 50},
}

// Distance returns the great-circle distance in meters between a guess and a
// photo, both given as (longitude, latitude).
func Distance(guessLng, guessLat, photoLng, photoLat float64) float64 {
	phi1 := guessLat * math.Pi / 180
	phi2 := photoLat * math.Pi / 180
	dPhi := (photoLat - guessLat) * math.Pi / 180
	dLambda := (photoLng - guessLng) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// Rounding can push a slightly past 1 for antipodal points.
	a = math.Min(math.Max(a, 0), 1)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Points maps a distance in meters onto [0, 1000]. Infinite, NaN and negative
// distances score 0.
func Points(distance float64) int {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return 0
	}
	if distance <= 5 {
		return MaxPoints
	}
	for _, tier := range scoreTiers {
		if distance <= tier.maxDistance {
			width := tier.maxDistance - tier.from
			return int(math.Round(tier.base - ((distance-tier.from)/width)*tier.drop))
		}
	}
	return 0
}

// ScoreGuess compares a (lng, lat) guess against the photo's true position.
func ScoreGuess(guessLng, guessLat float64, photo internal.Photo) (float64, int) {
	d := Distance(guessLng, guessLat, photo.Lng(), photo.Lat())
	return d, Points(d)
}

// roundedMeters is the distance as shown to players, nil when there is none.
func roundedMeters(distance float64) *int {
	if math.IsInf(distance, 0) || math.IsNaN(distance) {
		return nil
	}
	m := int(math.Round(distance))
	return &m
}

package internal

import (
	"fmt"
	"math"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyMedium
	}
}

// Photo is a playable image and where it was taken.
// CoordX holds the latitude and CoordY the longitude.
type Photo struct {
	ImageURL   string     `json:"imageUrl"`
	Location   string     `json:"location"`
	Difficulty Difficulty `json:"difficulty"`
	CoordX     float64    `json:"coordX"`
	CoordY     float64    `json:"coordY"`
}

func (p Photo) Lat() float64 { return p.CoordX }
func (p Photo) Lng() float64 { return p.CoordY }

func (p Photo) Validate() error {
	if p.ImageURL == "" {
		return fmt.Errorf("photo: missing image url")
	}
	if _, _, err := NormalizeCoordinates(p.CoordY, p.CoordX); err != nil {
		return fmt.Errorf("photo %s: %w", p.ImageURL, err)
	}
	return nil
}

// PhotoPayload carries the true coordinates; PublicPhoto does not.
type PhotoPayload struct {
	ImageURL   string     `json:"imageUrl"`
	Location   string     `json:"location"`
	Difficulty Difficulty `json:"difficulty"`
	CoordX     float64    `json:"coordX"`
	CoordY     float64    `json:"coordY"`
}

type PublicPhoto struct {
	ImageURL   string     `json:"imageUrl"`
	Location   string     `json:"location"`
	Difficulty Difficulty `json:"difficulty"`
}

func (p Photo) Payload() PhotoPayload {
	return PhotoPayload(p)
}

func (p Photo) Public() PublicPhoto {
	return PublicPhoto{
		ImageURL:   p.ImageURL,
		Location:   p.Location,
		Difficulty: p.Difficulty,
	}
}

// Location is the revealed answer: X latitude, Y longitude.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Photo) ActualLocation() Location {
	return Location{X: p.CoordX, Y: p.CoordY}
}

// NormalizeCoordinates validates a (lng, lat) pair and wraps the longitude into
// [-180, 180], since map widgets report longitudes past the antimeridian.
func NormalizeCoordinates(lng, lat float64) (float64, float64, error) {
	if math.IsNaN(lng) || math.IsNaN(lat) || math.IsInf(lng, 0) || math.IsInf(lat, 0) {
		return 0, 0, fmt.Errorf("%w: coordinates must be finite", ErrInvalidGuess)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: latitude %.6f out of range", ErrInvalidGuess, lat)
	}
	if lng < -180 || lng > 180 {
		lng = math.Mod(lng+180, 360)
		if lng < 0 {
			lng += 360
		}
		lng -= 180
	}
	return lng, lat, nil
}

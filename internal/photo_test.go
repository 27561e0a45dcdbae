package internal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lng     float64
		lat     float64
		wantLng float64
		wantErr bool
	}{
		{name: "in range", lng: 2.2945, lat: 48.8584, wantLng: 2.2945},
		{name: "edges", lng: -180, lat: 90, wantLng: -180},
		{name: "wrapped east", lng: 190, lat: 0, wantLng: -170},
		{name: "wrapped west", lng: -190, lat: 0, wantLng: 170},
		{name: "several turns", lng: 720 + 10, lat: 0, wantLng: 10},
		{name: "latitude too high", lng: 0, lat: 90.5, wantErr: true},
		{name: "latitude too low", lng: 0, lat: -91, wantErr: true},
		{name: "nan", lng: math.NaN(), lat: 0, wantErr: true},
		{name: "inf", lng: 0, lat: math.Inf(-1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lng, lat, err := NormalizeCoordinates(tt.lng, tt.lat)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidGuess)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantLng, lng, 1e-9)
			assert.Equal(t, tt.lat, lat)
		})
	}
}

func TestPhotoViews(t *testing.T) {
	p := Photo{ImageURL: "u", Location: "Paris", Difficulty: DifficultyHard, CoordX: 48.85, CoordY: 2.29}

	assert.Equal(t, 48.85, p.Lat())
	assert.Equal(t, 2.29, p.Lng())
	assert.Equal(t, Location{X: 48.85, Y: 2.29}, p.ActualLocation())
	assert.Equal(t, PublicPhoto{ImageURL: "u", Location: "Paris", Difficulty: DifficultyHard}, p.Public())
	assert.Equal(t, 2.29, p.Payload().CoordY)
}

func TestPhotoValidate(t *testing.T) {
	assert.NoError(t, Photo{ImageURL: "u", CoordX: 10, CoordY: 20}.Validate())
	assert.Error(t, Photo{CoordX: 10, CoordY: 20}.Validate())
	assert.ErrorIs(t, Photo{ImageURL: "u", CoordX: 95, CoordY: 0}.Validate(), ErrInvalidGuess)
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, DifficultyEasy, ParseDifficulty("easy"))
	assert.Equal(t, DifficultyHard, ParseDifficulty("hard"))
	assert.Equal(t, DifficultyMedium, ParseDifficulty("medium"))
	assert.Equal(t, DifficultyMedium, ParseDifficulty("extreme"))
}

func TestErrorCode(t *testing.T) {
	tests := map[error]string{
		ErrRoomNotFound:        "room_not_found",
		ErrPlayerNotFound:      "player_not_found",
		ErrInvalidState:        "invalid_state",
		ErrRoomFull:            "room_full",
		ErrDuplicateSubmission: "duplicate_submission",
		ErrNoPhotosAvailable:   ErrorCodeNoPhotos,
		ErrInvalidGuess:        "invalid_guess",
		ErrInvalidPlayerName:   "invalid_player_name",
		errors.New("boom"):     "internal_error",
	}
	for err, want := range tests {
		assert.Equal(t, want, ErrorCode(err))
	}

	assert.Equal(t, "room_full", ErrorCode(errors.Join(errors.New("ctx"), ErrRoomFull)))
}

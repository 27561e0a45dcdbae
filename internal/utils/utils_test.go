package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/photoguessr-backend/internal"
)

func TestGenerateRoomCode(t *testing.T) {
	code := GenerateRoomCode(RoomCodeLength)
	assert.Len(t, code, RoomCodeLength)
	for _, r := range code {
		assert.Contains(t, RoomCodeAlphabet, string(r))
	}

	assert.Len(t, GenerateRoomCode(0), RoomCodeLength)
	assert.Len(t, GenerateRoomCode(9), 9)
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeRoomCode("  ab12cd\n"))
}

func TestNormalizeName(t *testing.T) {
	name, ok := NormalizeName("  Jean   Luc  ")
	assert.True(t, ok)
	assert.Equal(t, "Jean Luc", name)

	_, ok = NormalizeName(" \t ")
	assert.False(t, ok)

	_, ok = NormalizeName(strings.Repeat("é", MaxNameLength))
	assert.True(t, ok, "length counts runes, not bytes")

	_, ok = NormalizeName(strings.Repeat("x", MaxNameLength+1))
	assert.False(t, ok)
}

func TestParsePhotosCSV(t *testing.T) {
	input := `imageUrl,location,difficulty,coordX,coordY
https://img.example/eiffel.jpg,"Eiffel Tower, Paris",easy,48.8584,2.2945
https://img.example/short.jpg,Nowhere
https://img.example/bad.jpg,Bad,hard,north,2.0
https://img.example/pole.jpg,Beyond the pole,hard,95,0
https://img.example/opera.jpg,Sydney Opera House,unknown, -33.8568, 151.2153
`
	photos, err := ParsePhotosCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, photos, 2)

	assert.Equal(t, internal.Photo{
		ImageURL:   "https://img.example/eiffel.jpg",
		Location:   "Eiffel Tower, Paris",
		Difficulty: internal.DifficultyEasy,
		CoordX:     48.8584,
		CoordY:     2.2945,
	}, photos[0])
	assert.Equal(t, internal.DifficultyMedium, photos[1].Difficulty)
	assert.Equal(t, -33.8568, photos[1].Lat())
}

func TestParsePhotosCSVWithoutHeader(t *testing.T) {
	photos, err := ParsePhotosCSV(strings.NewReader("https://img.example/a.jpg,A,easy,1,2\n"))
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, 2.0, photos[0].Lng())
}

func TestReadPhotosCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.csv")
	require.NoError(t, os.WriteFile(path, []byte("https://img.example/a.jpg,A,easy,1,2\n"), 0o600))

	photos, err := ReadPhotosCSV(path)
	require.NoError(t, err)
	assert.Len(t, photos, 1)

	_, err = ReadPhotosCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

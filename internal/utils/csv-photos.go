package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/photoguessr-backend/internal"
)

// ReadPhotosCSV loads photos from a file with the columns
// imageUrl,location,difficulty,coordX,coordY (coordX is the latitude).
func ReadPhotosCSV(filePath string) ([]internal.Photo, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read photos file %s: %w", filePath, err)
	}
	defer f.Close()

	photos, err := ParsePhotosCSV(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s as CSV: %w", filePath, err)
	}
	return photos, nil
}

// ParsePhotosCSV skips an optional header row and any invalid record.
func ParsePhotosCSV(r io.Reader) ([]internal.Photo, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	var photos []internal.Photo
	for line := 1; ; line++ {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(record[0], "imageUrl") {
			continue
		}
		if len(record) < 5 {
			log.Warn().Int("line", line).Strs("record", record).Msg("[ParsePhotosCSV] skipping short record")
			continue
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if latErr != nil || lngErr != nil {
			log.Warn().Int("line", line).Strs("record", record).Msg("[ParsePhotosCSV] skipping record with bad coordinates")
			continue
		}

		photo := internal.Photo{
			ImageURL:   strings.TrimSpace(record[0]),
			Location:   strings.TrimSpace(record[1]),
			Difficulty: internal.ParseDifficulty(strings.TrimSpace(record[2])),
			CoordX:     lat,
			CoordY:     lng,
		}
		if err := photo.Validate(); err != nil {
			log.Warn().Int("line", line).Err(err).Msg("[ParsePhotosCSV] skipping invalid photo")
			continue
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

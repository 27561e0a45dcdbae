package utils

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const (
	RoomCodeLength   = 6
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MaxNameLength    = 24
)

// GenerateRoomCode returns a random upper-case alphanumeric code. Uniqueness
// is the caller's job.
func GenerateRoomCode(length int) string {
	if length <= 0 {
		length = RoomCodeLength
	}
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(RoomCodeAlphabet[rand.IntN(len(RoomCodeAlphabet))])
	}
	return b.String()
}

// NormalizeRoomCode upper-cases and trims a code typed by a player.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeName trims a display name and collapses inner whitespace. It
// reports false for names that are empty or longer than MaxNameLength.
func NormalizeName(name string) (string, bool) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", false
	}
	return name, true
}

package internal

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrPlayerNotFound      = errors.New("player not found in room")
	ErrInvalidState        = errors.New("operation not valid in current game state")
	ErrRoomFull            = errors.New("room is full")
	ErrDuplicateSubmission = errors.New("guess already submitted for this round")
	ErrNoPhotosAvailable   = errors.New("no photos available")
	ErrInvalidGuess        = errors.New("invalid guess coordinates")
	ErrInvalidPlayerName   = errors.New("invalid player name")
	ErrInternal            = errors.New("internal failure")
)

// ErrorCode is the machine readable code sent to clients for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrDuplicateSubmission):
		return "duplicate_submission"
	case errors.Is(err, ErrNoPhotosAvailable):
		return ErrorCodeNoPhotos
	case errors.Is(err, ErrInvalidGuess):
		return "invalid_guess"
	case errors.Is(err, ErrInvalidPlayerName):
		return "invalid_player_name"
	default:
		return "internal_error"
	}
}

package apperror

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrNotAPlayer       = errors.New("player has no seat in this room")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameFinished     = errors.New("game is already finished")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrNoPieceAtSquare  = errors.New("no piece at square")
	ErrWrongPieceColor  = errors.New("piece belongs to the opponent")
	ErrIllegalMove      = errors.New("illegal move")
	ErrNotInRoom        = errors.New("not a member of this room")
)

// Code maps an error to the stable code carried by error replies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCell):
		return "invalid_input"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrNotAPlayer):
		return "not_a_player"
	case errors.Is(err, ErrNotYourTurn):
		return "wrong_turn"
	case errors.Is(err, ErrGameIsNotStarted):
		return "not_started"
	case errors.Is(err, ErrGameFinished):
		return "game_over"
	case errors.Is(err, ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, ErrNoPieceAtSquare):
		return "no_piece_at_square"
	case errors.Is(err, ErrWrongPieceColor):
		return "wrong_piece_color"
	case errors.Is(err, ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	default:
		return "internal"
	}
}

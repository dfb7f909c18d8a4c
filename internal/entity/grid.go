package entity

import (
	"github.com/yogu-code/chess-backend/internal/apperror"
)

const (
	MarkX = "X"
	MarkO = "O"

	WinnerDraw = "draw"

	EmptyCell = ""

	gridSeats = 2
)

// WinCombos lists the eight three-in-a-row line patterns of the 3x3 board.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// GridRoom holds the authoritative state of one 3x3 grid game session.
// The first seated player plays X, the second plays O.
type GridRoom struct {
	ID          string
	Board       [9]string
	Players     []string // seat order, at most two user identities
	PlayerNames map[string]string
	Turn        string
	Started     bool
	Over        bool
	Winner      string // MarkX, MarkO, WinnerDraw or empty
}

func NewGridRoom(id string) *GridRoom {
	return &GridRoom{
		ID:          id,
		Players:     make([]string, 0, gridSeats),
		PlayerNames: make(map[string]string),
		Turn:        MarkX,
	}
}

// HasPlayer reports whether the identity already holds a seat.
func (that *GridRoom) HasPlayer(playerID string) bool {
	for _, id := range that.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

// IsFull reports whether both seats are taken.
func (that *GridRoom) IsFull() bool {
	return len(that.Players) >= gridSeats
}

// AddPlayer seats the identity and returns its mark. The caller must have
// checked IsFull and HasPlayer first.
func (that *GridRoom) AddPlayer(playerID, name string) string {
	that.Players = append(that.Players, playerID)
	that.PlayerNames[playerID] = name

	if len(that.Players) == gridSeats {
		that.Started = true
	}

	return that.MarkOf(playerID)
}

// RemovePlayer frees the identity's seat and display name.
func (that *GridRoom) RemovePlayer(playerID string) {
	for i, id := range that.Players {
		if id == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			break
		}
	}
	delete(that.PlayerNames, playerID)
}

// MarkOf returns the seated identity's mark, or an empty string.
func (that *GridRoom) MarkOf(playerID string) string {
	for i, id := range that.Players {
		if id != playerID {
			continue
		}
		if i == 0 {
			return MarkX
		}
		return MarkO
	}
	return EmptyCell
}

// MakeMove validates and applies a move for the identity. The caller checks
// the room phase; everything cell- and seat-related is checked here, in the
// order the error reply should reflect.
func (that *GridRoom) MakeMove(playerID string, cell int) error {
	if cell < 0 || cell >= len(that.Board) {
		return apperror.ErrInvalidCell
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	mark := that.MarkOf(playerID)
	if mark == EmptyCell {
		return apperror.ErrNotAPlayer
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	that.Board[cell] = mark
	that.updateResult(mark)

	return nil
}

// updateResult evaluates the terminal condition after a successful move and
// either ends the game or passes the turn.
func (that *GridRoom) updateResult(mark string) {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			that.Winner = a
			that.Over = true
			return
		}
	}

	for _, cell := range that.Board {
		if cell == EmptyCell {
			that.Turn = toggleMark(mark)
			return
		}
	}

	that.Winner = WinnerDraw
	that.Over = true
}

// Reset clears the board back to a fresh game while preserving seats.
func (that *GridRoom) Reset() {
	that.Board = [9]string{}
	that.Turn = MarkX
	that.Over = false
	that.Winner = ""
	that.Started = len(that.Players) == gridSeats
}

func toggleMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}

// GridPlayer is the seat view carried by state snapshots.
type GridPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mark string `json:"mark"`
}

// GridState is the full room snapshot broadcast after every state change.
type GridState struct {
	Room    string       `json:"room"`
	Board   [9]string    `json:"board"`
	Players []GridPlayer `json:"players"`
	Turn    string       `json:"current_player"`
	Started bool         `json:"game_started"`
	Over    bool         `json:"game_over"`
	Winner  string       `json:"winner,omitempty"`
}

// Snapshot builds the wire view of the room.
func (that *GridRoom) Snapshot() *GridState {
	players := make([]GridPlayer, 0, len(that.Players))
	for _, id := range that.Players {
		players = append(players, GridPlayer{
			ID:   id,
			Name: that.PlayerNames[id],
			Mark: that.MarkOf(id),
		})
	}

	return &GridState{
		Room:    that.ID,
		Board:   that.Board,
		Players: players,
		Turn:    that.Turn,
		Started: that.Started,
		Over:    that.Over,
		Winner:  that.Winner,
	}
}

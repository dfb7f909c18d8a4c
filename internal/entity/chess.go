package entity

import (
	"time"

	"github.com/yogu-code/chess-backend/internal/chessengine"
)

const (
	ColorWhite = "white"
	ColorBlack = "black"

	chessSeats = 2
)

// ChessMove is one entry of the room's append-only move log.
type ChessMove struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Piece     string    `json:"piece"`
	Player    string    `json:"player"`
	San       string    `json:"san"`
	Timestamp time.Time `json:"timestamp"`
}

// ChessRoom holds the authoritative state of one chess session. Position,
// legality and terminal conditions are owned by the attached rules engine;
// the room keeps seats, colors, the move log and cached engine verdicts.
type ChessRoom struct {
	ID           string
	Engine       chessengine.Engine
	Players      []string // seat order, first entrant plays white
	PlayerNames  map[string]string
	PlayerColors map[string]string
	Turn         string
	Started      bool
	Over         bool
	Winner       string // ColorWhite, ColorBlack, WinnerDraw or empty
	Moves        []ChessMove
	Check        bool
	Checkmate    bool
	Stalemate    bool
}

func NewChessRoom(id string, engine chessengine.Engine) *ChessRoom {
	return &ChessRoom{
		ID:           id,
		Engine:       engine,
		Players:      make([]string, 0, chessSeats),
		PlayerNames:  make(map[string]string),
		PlayerColors: make(map[string]string),
		Turn:         ColorWhite,
	}
}

// HasPlayer reports whether the identity already holds a seat.
func (that *ChessRoom) HasPlayer(playerID string) bool {
	_, ok := that.PlayerColors[playerID]
	return ok
}

// IsFull reports whether both seats are taken.
func (that *ChessRoom) IsFull() bool {
	return len(that.Players) >= chessSeats
}

// AddPlayer seats the identity on the free seat and returns its color. The
// first entrant plays white; whoever fills the remaining seat later (second
// joiner, or a replacement after a disconnect) takes the unclaimed color.
// The caller must have checked IsFull and HasPlayer first.
func (that *ChessRoom) AddPlayer(playerID, name string) string {
	color := ColorWhite
	for _, taken := range that.PlayerColors {
		if taken == ColorWhite {
			color = ColorBlack
		}
	}

	that.Players = append(that.Players, playerID)
	that.PlayerNames[playerID] = name
	that.PlayerColors[playerID] = color

	if len(that.Players) == chessSeats {
		that.Started = true
	}

	return color
}

// RemovePlayer frees the identity's seat, name and color assignment.
func (that *ChessRoom) RemovePlayer(playerID string) {
	for i, id := range that.Players {
		if id == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			break
		}
	}
	delete(that.PlayerNames, playerID)
	delete(that.PlayerColors, playerID)
}

// ColorOf returns the seated identity's color, or an empty string.
func (that *ChessRoom) ColorOf(playerID string) string {
	return that.PlayerColors[playerID]
}

// AppendMove records an engine-accepted move.
func (that *ChessRoom) AppendMove(move ChessMove) {
	that.Moves = append(that.Moves, move)
}

// Reset returns the room to the starting position, preserving seats and
// colors. The move log does not survive a reset.
func (that *ChessRoom) Reset() {
	that.Engine.Reset()
	that.Turn = ColorWhite
	that.Over = false
	that.Winner = ""
	that.Moves = nil
	that.Check = false
	that.Checkmate = false
	that.Stalemate = false
	that.Started = len(that.Players) == chessSeats
}

// WaitingForPlayer reports whether the room still has a free seat.
func (that *ChessRoom) WaitingForPlayer() bool {
	return len(that.Players) < chessSeats
}

// ChessPlayer is the seat view carried by state snapshots.
type ChessPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ChessState is the full room snapshot broadcast after every state change.
type ChessState struct {
	Room             string        `json:"room"`
	Position         string        `json:"position"`
	Players          []ChessPlayer `json:"players"`
	Turn             string        `json:"current_player"`
	Started          bool          `json:"game_started"`
	Over             bool          `json:"game_over"`
	Winner           string        `json:"winner,omitempty"`
	WaitingForPlayer bool          `json:"waiting_for_player"`
	Check            bool          `json:"check"`
	Checkmate        bool          `json:"checkmate"`
	Stalemate        bool          `json:"stalemate"`
	Moves            []ChessMove   `json:"moves"`
	LastMove         *ChessMove    `json:"last_move,omitempty"`
}

// Snapshot builds the wire view of the room, including the serialized
// position from the rules engine.
func (that *ChessRoom) Snapshot() *ChessState {
	players := make([]ChessPlayer, 0, len(that.Players))
	for _, id := range that.Players {
		players = append(players, ChessPlayer{
			ID:    id,
			Name:  that.PlayerNames[id],
			Color: that.PlayerColors[id],
		})
	}

	state := &ChessState{
		Room:             that.ID,
		Position:         that.Engine.FEN(),
		Players:          players,
		Turn:             that.Turn,
		Started:          that.Started,
		Over:             that.Over,
		Winner:           that.Winner,
		WaitingForPlayer: that.WaitingForPlayer(),
		Check:            that.Check,
		Checkmate:        that.Checkmate,
		Stalemate:        that.Stalemate,
		Moves:            that.Moves,
	}

	if len(that.Moves) > 0 {
		last := that.Moves[len(that.Moves)-1]
		state.LastMove = &last
	}

	return state
}

// Package chessengine wraps the chess rules library behind the narrow
// capability the room manager needs: position serialization, side to move,
// piece lookup, legal-destination queries and move application. The engine
// is the sole authority on move acceptance and terminal conditions.
package chessengine

const (
	White = "white"
	Black = "black"
)

// Piece describes the occupant of a square.
type Piece struct {
	Type  string `json:"type"`  // pawn, knight, bishop, rook, queen, king
	Color string `json:"color"` // White or Black
}

// Move is an engine-accepted move record.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Piece     string `json:"piece"`
	San       string `json:"san"`
	Promotion string `json:"promotion,omitempty"`
}

// Engine is one chess session's rules collaborator.
type Engine interface {
	// Reset returns the engine to the starting position.
	Reset()

	// FEN serializes the current position.
	FEN() string

	// Turn returns the color to move, White or Black.
	Turn() string

	// PieceAt returns the piece on the given algebraic square, if any.
	PieceAt(square string) (Piece, bool)

	// MovesFrom lists the legal destination squares from the given square.
	MovesFrom(square string) []string

	// Play attempts a move with an optional promotion ("q", "r", "b", "n").
	// Rejections and malformed squares are reported as errors; the position
	// is unchanged on error.
	Play(from, to, promotion string) (*Move, error)

	// Check reports whether the side to move is in check after the last
	// accepted move.
	Check() bool

	// Checkmate reports whether the game ended in checkmate.
	Checkmate() bool

	// Stalemate reports whether the game ended in stalemate.
	Stalemate() bool
}

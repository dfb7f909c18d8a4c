package chessengine

import (
	"errors"
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrMoveRejected  = errors.New("move rejected")
)

// gameEngine is the default Engine backed by the chess rules library.
type gameEngine struct {
	game    *chess.Game
	lastSAN string
}

// New returns an Engine initialized to the starting position.
func New() Engine {
	return &gameEngine{
		game: chess.NewGame(),
	}
}

func (that *gameEngine) Reset() {
	that.game = chess.NewGame()
	that.lastSAN = ""
}

func (that *gameEngine) FEN() string {
	return that.game.FEN()
}

func (that *gameEngine) Turn() string {
	if that.game.Position().Turn() == chess.White {
		return White
	}
	return Black
}

func (that *gameEngine) PieceAt(square string) (Piece, bool) {
	sq, err := parseSquare(square)
	if err != nil {
		return Piece{}, false
	}

	piece := that.game.Position().Board().Piece(sq)
	if piece == chess.NoPiece {
		return Piece{}, false
	}

	color := White
	if piece.Color() == chess.Black {
		color = Black
	}

	return Piece{Type: pieceTypeName(piece.Type()), Color: color}, true
}

func (that *gameEngine) MovesFrom(square string) []string {
	sq, err := parseSquare(square)
	if err != nil {
		return nil
	}

	var destinations []string
	for _, move := range that.game.ValidMoves() {
		if move.S1() == sq {
			destinations = append(destinations, move.S2().String())
		}
	}

	return destinations
}

// Play decodes the move in UCI form so that format and legality are checked
// by the rules library in one step. Library faults are contained here and
// reported as rejections, never as panics.
func (that *gameEngine) Play(from, to, promotion string) (move *Move, err error) {
	defer func() {
		if r := recover(); r != nil {
			move = nil
			err = fmt.Errorf("%w: rules engine fault: %v", ErrMoveRejected, r)
		}
	}()

	if _, err = parseSquare(from); err != nil {
		return nil, err
	}
	if _, err = parseSquare(to); err != nil {
		return nil, err
	}

	piece, ok := that.PieceAt(from)
	if !ok {
		return nil, fmt.Errorf("%w: %s is empty", ErrMoveRejected, from)
	}

	uci := from + to + strings.ToLower(promotion)
	position := that.game.Position()

	decoded, err := chess.UCINotation{}.Decode(position, uci)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMoveRejected, uci)
	}

	san := chess.AlgebraicNotation{}.Encode(position, decoded)

	if err = that.game.Move(decoded, nil); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMoveRejected, uci)
	}

	that.lastSAN = san

	return &Move{
		From:      from,
		To:        to,
		Piece:     piece.Type,
		San:       san,
		Promotion: strings.ToLower(promotion),
	}, nil
}

// Check is derived from the algebraic notation of the last accepted move:
// "+" marks check, "#" marks mate (which implies check).
func (that *gameEngine) Check() bool {
	return strings.HasSuffix(that.lastSAN, "+") || strings.HasSuffix(that.lastSAN, "#")
}

func (that *gameEngine) Checkmate() bool {
	return that.game.Method() == chess.Checkmate
}

func (that *gameEngine) Stalemate() bool {
	return that.game.Method() == chess.Stalemate
}

// parseSquare maps algebraic coordinates ("a1".."h8") onto the library's
// square numbering, which is rank-major from a1.
func parseSquare(square string) (chess.Square, error) {
	if len(square) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSquare, square)
	}

	file, rank := square[0], square[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSquare, square)
	}

	return chess.Square(int(rank-'1')*8 + int(file-'a')), nil
}

func pieceTypeName(pieceType chess.PieceType) string {
	switch pieceType {
	case chess.King:
		return "king"
	case chess.Queen:
		return "queen"
	case chess.Rook:
		return "rook"
	case chess.Bishop:
		return "bishop"
	case chess.Knight:
		return "knight"
	case chess.Pawn:
		return "pawn"
	default:
		return ""
	}
}

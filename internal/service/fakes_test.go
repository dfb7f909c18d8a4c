package service

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/yogu-code/chess-backend/internal/chessengine"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentEvent struct {
	Target  string // "room:<id>" or "player:<id>"
	Event   string
	Payload any
}

// fakeBroadcaster records every send so tests can assert on the order and
// addressing of broadcasts.
type fakeBroadcaster struct {
	mu      sync.Mutex
	events  []sentEvent
	members map[string]map[string]bool // roomID -> playerID set
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{
		members: make(map[string]map[string]bool),
	}
}

func (that *fakeBroadcaster) ToRoom(roomID, event string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.events = append(that.events, sentEvent{Target: "room:" + roomID, Event: event, Payload: payload})
}

func (that *fakeBroadcaster) ToPlayer(playerID, event string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.events = append(that.events, sentEvent{Target: "player:" + playerID, Event: event, Payload: payload})
}

func (that *fakeBroadcaster) JoinRoom(playerID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()
	if that.members[roomID] == nil {
		that.members[roomID] = make(map[string]bool)
	}
	that.members[roomID][playerID] = true
}

func (that *fakeBroadcaster) LeaveRoom(playerID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()
	delete(that.members[roomID], playerID)
}

func (that *fakeBroadcaster) eventNames() []string {
	that.mu.Lock()
	defer that.mu.Unlock()
	names := make([]string, 0, len(that.events))
	for _, e := range that.events {
		names = append(names, e.Event)
	}
	return names
}

func (that *fakeBroadcaster) lastOf(event string) (sentEvent, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()
	for i := len(that.events) - 1; i >= 0; i-- {
		if that.events[i].Event == event {
			return that.events[i], true
		}
	}
	return sentEvent{}, false
}

func (that *fakeBroadcaster) count(event string) int {
	that.mu.Lock()
	defer that.mu.Unlock()
	n := 0
	for _, e := range that.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// fakeEngine is a deterministic rules-engine stub. Moves listed in legal are
// accepted; everything else is rejected. Terminal verdicts are set by the
// test through the *Next fields and take effect after the next accepted move.
type fakeEngine struct {
	fen    string
	turn   string
	pieces map[string]chessengine.Piece
	legal  map[string][]string

	checkNext     bool
	checkmateNext bool
	stalemateNext bool

	check     bool
	checkmate bool
	stalemate bool

	resets int
	played []string
}

func newFakeEngine() *fakeEngine {
	engine := &fakeEngine{}
	engine.Reset()
	return engine
}

func (that *fakeEngine) Reset() {
	that.fen = "startpos"
	that.turn = chessengine.White
	that.pieces = map[string]chessengine.Piece{
		"e2": {Type: "pawn", Color: chessengine.White},
		"e7": {Type: "pawn", Color: chessengine.Black},
	}
	that.legal = map[string][]string{
		"e2": {"e3", "e4"},
		"e7": {"e5", "e6"},
	}
	that.check = false
	that.checkmate = false
	that.stalemate = false
	that.resets++
}

func (that *fakeEngine) FEN() string  { return that.fen }
func (that *fakeEngine) Turn() string { return that.turn }

func (that *fakeEngine) PieceAt(square string) (chessengine.Piece, bool) {
	piece, ok := that.pieces[square]
	return piece, ok
}

func (that *fakeEngine) MovesFrom(square string) []string {
	return that.legal[square]
}

func (that *fakeEngine) Play(from, to, promotion string) (*chessengine.Move, error) {
	for _, dest := range that.legal[from] {
		if dest != to {
			continue
		}

		piece := that.pieces[from]
		delete(that.pieces, from)
		that.pieces[to] = piece

		if that.turn == chessengine.White {
			that.turn = chessengine.Black
		} else {
			that.turn = chessengine.White
		}

		that.fen = "after " + from + to
		that.check = that.checkNext
		that.checkmate = that.checkmateNext
		that.stalemate = that.stalemateNext
		that.played = append(that.played, from+to)

		return &chessengine.Move{From: from, To: to, Piece: piece.Type, San: from + to, Promotion: promotion}, nil
	}

	return nil, fmt.Errorf("fake engine: %s%s not allowed", from, to)
}

func (that *fakeEngine) Check() bool     { return that.check }
func (that *fakeEngine) Checkmate() bool { return that.checkmate }
func (that *fakeEngine) Stalemate() bool { return that.stalemate }

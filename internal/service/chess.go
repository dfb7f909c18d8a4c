package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yogu-code/chess-backend/internal/apperror"
	"github.com/yogu-code/chess-backend/internal/chessengine"
	"github.com/yogu-code/chess-backend/internal/entity"
	"github.com/yogu-code/chess-backend/internal/pkg"
	"github.com/yogu-code/chess-backend/internal/repository"
	"github.com/yogu-code/chess-backend/internal/sanitize"
	"github.com/yogu-code/chess-backend/internal/scheduler"
)

// EndGameDelay is the grace period between a terminal position and room
// teardown, so clients can display the result before the room disappears.
const EndGameDelay = 5 * time.Second

// IllegalMoveError carries the rejected squares and the legal destinations
// from the origin square, for client feedback. It unwraps to ErrIllegalMove.
type IllegalMoveError struct {
	From       string
	To         string
	LegalMoves []string
}

func (that *IllegalMoveError) Error() string {
	return fmt.Sprintf("%v: %s to %s", apperror.ErrIllegalMove, that.From, that.To)
}

func (that *IllegalMoveError) Unwrap() error {
	return apperror.ErrIllegalMove
}

// ChessService owns chess session state. Like the grid manager, one mutex
// serializes every operation including the deferred end-of-game teardown.
type ChessService struct {
	logger *slog.Logger

	mu          sync.Mutex
	rooms       repository.ChessRoomRepository
	broadcaster Broadcaster
	scheduler   *scheduler.Scheduler
	newEngine   func() chessengine.Engine
	endDelay    time.Duration
}

func NewChessService(
	logger *slog.Logger,
	rooms repository.ChessRoomRepository,
	broadcaster Broadcaster,
	sched *scheduler.Scheduler,
	newEngine func() chessengine.Engine,
	endDelay time.Duration,
) *ChessService {
	return &ChessService{
		logger:      logger,
		rooms:       rooms,
		broadcaster: broadcaster,
		scheduler:   sched,
		newEngine:   newEngine,
		endDelay:    endDelay,
	}
}

// Create opens a new room with the creator seated as white and returns the
// generated room code. Codes are regenerated on the rare collision so a new
// room can never silently overwrite a live one.
func (that *ChessService) Create(ctx context.Context, playerID, name string) (string, error) {
	log := that.logger.With("method", "Create", "playerID", playerID)

	if playerID == "" || name == "" {
		return "", fmt.Errorf("%w: player and name are required", apperror.ErrInvalidInput)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	roomID := pkg.GenerateRoomCode()
	for {
		if _, err := that.rooms.GetByID(ctx, roomID); errors.Is(err, apperror.ErrRoomNotFound) {
			break
		}
		roomID = pkg.GenerateRoomCode()
	}

	room := entity.NewChessRoom(roomID, that.newEngine())
	color := room.AddPlayer(playerID, name)

	if err := that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}

	that.broadcaster.JoinRoom(playerID, roomID)
	that.broadcaster.ToPlayer(playerID, EventChessCreated, createdPayload{Room: roomID, Color: color})
	that.broadcaster.ToRoom(roomID, EventChessState, room.Snapshot())

	log.Info("room created", "roomID", roomID)

	return roomID, nil
}

// Join seats the player as black, or re-broadcasts state when the identity
// is already seated (reconnection into an in-progress session).
func (that *ChessService) Join(ctx context.Context, roomID, playerID, name string) error {
	log := that.logger.With("method", "Join", "roomID", roomID, "playerID", playerID)

	if roomID == "" || playerID == "" || name == "" {
		return fmt.Errorf("%w: room, player and name are required", apperror.ErrInvalidInput)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	that.broadcaster.JoinRoom(playerID, roomID)

	if room.HasPlayer(playerID) {
		that.broadcaster.ToRoom(roomID, EventChessState, room.Snapshot())
		log.Info("player reconnected")
		return nil
	}

	if room.IsFull() {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, roomID)
	}

	color := room.AddPlayer(playerID, name)
	that.broadcaster.ToRoom(roomID, EventChessStarted, joinedPayload{Player: playerID, Name: name})
	that.broadcaster.ToRoom(roomID, EventChessState, room.Snapshot())

	log.Info("player seated", "color", color)

	return nil
}

// Move submits a move to the room's rules engine. The engine's verdict is
// authoritative; a rejection surfaces as IllegalMoveError with the legal
// destinations from the origin square.
func (that *ChessService) Move(ctx context.Context, roomID, playerID, from, to, promotion string) error {
	log := that.logger.With("method", "Move", "roomID", roomID, "playerID", playerID)

	if roomID == "" || playerID == "" || from == "" || to == "" {
		return fmt.Errorf("%w: room, player, from and to are required", apperror.ErrInvalidInput)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	if !room.Started {
		return apperror.ErrGameIsNotStarted
	}
	if room.Over {
		return apperror.ErrGameFinished
	}

	color := room.ColorOf(playerID)
	if color == "" {
		return apperror.ErrNotAPlayer
	}
	if color != room.Turn {
		return apperror.ErrNotYourTurn
	}

	piece, ok := room.Engine.PieceAt(from)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrNoPieceAtSquare, from)
	}
	if piece.Color != color {
		return fmt.Errorf("%w: %s holds a %s piece", apperror.ErrWrongPieceColor, from, piece.Color)
	}

	accepted, err := room.Engine.Play(from, to, promotion)
	if err != nil {
		log.Info("move rejected", "from", from, "to", to, "error", err)
		return &IllegalMoveError{From: from, To: to, LegalMoves: room.Engine.MovesFrom(from)}
	}

	move := entity.ChessMove{
		From:      accepted.From,
		To:        accepted.To,
		Piece:     accepted.Piece,
		Player:    playerID,
		San:       accepted.San,
		Timestamp: time.Now(),
	}
	room.AppendMove(move)

	room.Turn = room.Engine.Turn()
	room.Check = room.Engine.Check()
	room.Checkmate = room.Engine.Checkmate()
	room.Stalemate = room.Engine.Stalemate()

	switch {
	case room.Checkmate:
		room.Over = true
		room.Winner = color
	case room.Stalemate:
		room.Over = true
		room.Winner = entity.WinnerDraw
	}

	that.broadcaster.ToRoom(roomID, EventChessState, room.Snapshot())
	that.broadcaster.ToPlayer(playerID, EventChessMove, accepted)

	log.Info("move applied", "san", accepted.San, "gameOver", room.Over)

	if room.Over {
		that.scheduler.Schedule(roomID, that.endDelay, func() {
			that.finishGame(context.Background(), roomID)
		})
	}

	return nil
}

// finishGame is the deferred end-of-game teardown. The room may already be
// gone if a disconnect sweep won the race; that is a no-op.
func (that *ChessService) finishGame(ctx context.Context, roomID string) {
	log := that.logger.With("method", "finishGame", "roomID", roomID)

	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return
	}

	that.broadcaster.ToRoom(roomID, EventChessEnded, endedPayload{Room: roomID, Winner: room.Winner})

	for _, playerID := range room.Players {
		that.broadcaster.LeaveRoom(playerID, roomID)
	}

	if err = that.rooms.DeleteByID(ctx, roomID); err != nil {
		log.Error("failed to delete room", "error", err)
		return
	}

	log.Info("finished room removed", "winner", room.Winner)
}

// Reset reinitializes the engine to the starting position, preserving seats
// and colors. A pending end-of-game teardown is cancelled: the room is live
// again. Unknown rooms are a no-op.
func (that *ChessService) Reset(ctx context.Context, roomID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	that.scheduler.Cancel(roomID)
	room.Reset()

	that.broadcaster.ToRoom(roomID, EventChessState, room.Snapshot())
	that.logger.Info("room reset", "method", "Reset", "roomID", roomID)

	return nil
}

// Chat relays sanitized chat text to the whole room.
func (that *ChessService) Chat(ctx context.Context, roomID, playerID, name, text string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	if !room.HasPlayer(playerID) {
		return fmt.Errorf("%w: room %s", apperror.ErrNotInRoom, roomID)
	}

	clean := sanitize.Clean(text)
	if clean == "" {
		return fmt.Errorf("%w: empty message", apperror.ErrInvalidInput)
	}

	that.broadcaster.ToRoom(roomID, EventChessChat, chatPayload{
		Name:      name,
		Message:   clean,
		Timestamp: time.Now(),
	})

	return nil
}

// HandleDisconnect removes the identity from every chess room it occupies.
// An emptied room is deleted together with its pending teardown; otherwise
// the room pauses until the seat is refilled by a reconnect.
func (that *ChessService) HandleDisconnect(ctx context.Context, playerID string) {
	log := that.logger.With("method", "HandleDisconnect", "playerID", playerID)

	that.mu.Lock()
	defer that.mu.Unlock()

	rooms, err := that.rooms.All(ctx)
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		return
	}

	for _, room := range rooms {
		if !room.HasPlayer(playerID) {
			continue
		}

		room.RemovePlayer(playerID)
		that.broadcaster.LeaveRoom(playerID, room.ID)

		if len(room.Players) == 0 {
			that.scheduler.Cancel(room.ID)
			if err = that.rooms.DeleteByID(ctx, room.ID); err != nil {
				log.Error("failed to delete room", "roomID", room.ID, "error", err)
			}
			log.Info("empty room deleted", "roomID", room.ID)
			continue
		}

		room.Started = false
		that.broadcaster.ToRoom(room.ID, EventChessPlayerLeft, leftPayload{Player: playerID})
		that.broadcaster.ToRoom(room.ID, EventChessState, room.Snapshot())
		log.Info("room paused after disconnect", "roomID", room.ID)
	}
}

type createdPayload struct {
	Room  string `json:"room"`
	Color string `json:"color"`
}

type endedPayload struct {
	Room   string `json:"room"`
	Winner string `json:"winner,omitempty"`
}

type chatPayload struct {
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

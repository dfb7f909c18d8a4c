package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yogu-code/chess-backend/internal/apperror"
	"github.com/yogu-code/chess-backend/internal/entity"
	"github.com/yogu-code/chess-backend/internal/repository"
)

// GridService owns the 3x3 grid room lifecycle. A single mutex serializes
// every operation, so state mutation and the broadcasts it produces are
// observed in the same order by all participants.
type GridService struct {
	logger *slog.Logger

	mu          sync.Mutex
	rooms       repository.GridRoomRepository
	broadcaster Broadcaster
}

func NewGridService(logger *slog.Logger, rooms repository.GridRoomRepository, broadcaster Broadcaster) *GridService {
	return &GridService{
		logger:      logger,
		rooms:       rooms,
		broadcaster: broadcaster,
	}
}

// Join seats the player in the room, creating the room on first reference.
// A player already seated is treated as an idempotent rejoin.
func (that *GridService) Join(ctx context.Context, roomID, playerID, name string) error {
	log := that.logger.With("method", "Join", "roomID", roomID, "playerID", playerID)

	if roomID == "" || playerID == "" || name == "" {
		return fmt.Errorf("%w: room, player and name are required", apperror.ErrInvalidInput)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		room = entity.NewGridRoom(roomID)
		if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		log.Info("room created")
	} else if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	that.broadcaster.JoinRoom(playerID, roomID)

	if room.HasPlayer(playerID) {
		that.broadcaster.ToRoom(roomID, EventGridState, room.Snapshot())
		log.Info("player rejoined")
		return nil
	}

	if room.IsFull() {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, roomID)
	}

	mark := room.AddPlayer(playerID, name)
	log.Info("player seated", "mark", mark)

	if room.Started {
		that.broadcaster.ToRoom(roomID, EventGridJoined, joinedPayload{Player: playerID, Name: name, Mark: mark})
		that.broadcaster.ToRoom(roomID, EventGridState, room.Snapshot())
		return nil
	}

	that.broadcaster.ToPlayer(playerID, EventGridWaiting, room.Snapshot())

	return nil
}

// Move applies a move for the player and broadcasts the resulting state.
func (that *GridService) Move(ctx context.Context, roomID, playerID string, cell int) error {
	log := that.logger.With("method", "Move", "roomID", roomID, "playerID", playerID)

	if roomID == "" || playerID == "" {
		return fmt.Errorf("%w: room and player are required", apperror.ErrInvalidInput)
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

	if err = room.MakeMove(playerID, cell); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	that.broadcaster.ToRoom(roomID, EventGridState, room.Snapshot())
	log.Info("move applied", "cell", cell, "gameOver", room.Over)

	return nil
}

// Reset clears the board while preserving seats. Unknown rooms are a no-op.
func (that *GridService) Reset(ctx context.Context, roomID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	room.Reset()
	that.broadcaster.ToRoom(roomID, EventGridState, room.Snapshot())
	that.logger.Info("room reset", "method", "Reset", "roomID", roomID)

	return nil
}

// HandleDisconnect removes the identity from every grid room it occupies.
// An emptied room is deleted; a room with a remaining player degrades to a
// stopped game so the survivor is not left waiting on a vanished opponent.
func (that *GridService) HandleDisconnect(ctx context.Context, playerID string) {
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
			if err = that.rooms.DeleteByID(ctx, room.ID); err != nil {
				log.Error("failed to delete room", "roomID", room.ID, "error", err)
			}
			log.Info("empty room deleted", "roomID", room.ID)
			continue
		}

		room.Started = false
		room.Over = true
		that.broadcaster.ToRoom(room.ID, EventGridPlayerLeft, leftPayload{Player: playerID})
		that.broadcaster.ToRoom(room.ID, EventGridState, room.Snapshot())
		log.Info("room degraded after disconnect", "roomID", room.ID)
	}
}

type joinedPayload struct {
	Player string `json:"player"`
	Name   string `json:"name"`
	Mark   string `json:"mark,omitempty"`
}

type leftPayload struct {
	Player string `json:"player"`
}

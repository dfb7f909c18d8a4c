package repository

import (
	"context"
	"sync"

	"github.com/yogu-code/chess-backend/internal/apperror"
	"github.com/yogu-code/chess-backend/internal/entity"
)

// ChessRoomRepository is the keyed store of chess rooms.
type ChessRoomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.ChessRoom) error
	GetByID(ctx context.Context, id string) (*entity.ChessRoom, error)
	DeleteByID(ctx context.Context, id string) error
	All(ctx context.Context) ([]*entity.ChessRoom, error)
}

type memChessRooms struct {
	mu    sync.RWMutex
	rooms map[string]*entity.ChessRoom
}

func NewChessRoomRepository() ChessRoomRepository {
	return &memChessRooms{
		rooms: make(map[string]*entity.ChessRoom),
	}
}

func (that *memChessRooms) CreateOrUpdate(_ context.Context, room *entity.ChessRoom) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = room

	return nil
}

func (that *memChessRooms) GetByID(_ context.Context, id string) (*entity.ChessRoom, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

func (that *memChessRooms) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, id)

	return nil
}

func (that *memChessRooms) All(_ context.Context) ([]*entity.ChessRoom, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*entity.ChessRoom, 0, len(that.rooms))
	for _, room := range that.rooms {
		rooms = append(rooms, room)
	}

	return rooms, nil
}

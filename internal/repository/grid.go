package repository

import (
	"context"
	"sync"

	"github.com/yogu-code/chess-backend/internal/apperror"
	"github.com/yogu-code/chess-backend/internal/entity"
)

// GridRoomRepository is the keyed store of grid rooms. All room state is
// process memory; the repository only owns the map, not the room's lifecycle.
type GridRoomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.GridRoom) error
	GetByID(ctx context.Context, id string) (*entity.GridRoom, error)
	DeleteByID(ctx context.Context, id string) error
	All(ctx context.Context) ([]*entity.GridRoom, error)
}

type memGridRooms struct {
	mu    sync.RWMutex
	rooms map[string]*entity.GridRoom
}

func NewGridRoomRepository() GridRoomRepository {
	return &memGridRooms{
		rooms: make(map[string]*entity.GridRoom),
	}
}

func (that *memGridRooms) CreateOrUpdate(_ context.Context, room *entity.GridRoom) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = room

	return nil
}

func (that *memGridRooms) GetByID(_ context.Context, id string) (*entity.GridRoom, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

func (that *memGridRooms) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, id)

	return nil
}

func (that *memGridRooms) All(_ context.Context) ([]*entity.GridRoom, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*entity.GridRoom, 0, len(that.rooms))
	for _, room := range that.rooms {
		rooms = append(rooms, room)
	}

	return rooms, nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yogu-code/chess-backend/internal/apperror"
	"github.com/yogu-code/chess-backend/internal/chessengine"
	"github.com/yogu-code/chess-backend/internal/entity"
	"github.com/yogu-code/chess-backend/internal/repository"
	"github.com/yogu-code/chess-backend/internal/scheduler"
)

const testEndDelay = 30 * time.Millisecond

type chessFixture struct {
	svc         *ChessService
	broadcaster *fakeBroadcaster
	engine      *fakeEngine
}

func newChessFixture(t *testing.T) *chessFixture {
	t.Helper()

	broadcaster := newFakeBroadcaster()
	engine := newFakeEngine()
	sched := scheduler.New()
	t.Cleanup(sched.Stop)

	svc := NewChessService(
		discardLogger(),
		repository.NewChessRoomRepository(),
		broadcaster,
		sched,
		func() chessengine.Engine { return engine },
		testEndDelay,
	)

	return &chessFixture{svc: svc, broadcaster: broadcaster, engine: engine}
}

func (that *chessFixture) startGame(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	roomID, err := that.svc.Create(ctx, "user1", "Alice")
	require.NoError(t, err)
	require.NoError(t, that.svc.Join(ctx, roomID, "user2", "Bob"))

	return roomID
}

func TestChessService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creator gets a room code and the white pieces", func(t *testing.T) {
		// Given: a fresh service
		f := newChessFixture(t)

		// When: a room is created
		roomID, err := f.svc.Create(ctx, "user1", "Alice")

		// Then: the creator is seated as white in a waiting room
		require.NoError(t, err)
		require.Len(t, roomID, 6)

		created, ok := f.broadcaster.lastOf(EventChessCreated)
		require.True(t, ok)
		require.Equal(t, "player:user1", created.Target)
		require.Equal(t, createdPayload{Room: roomID, Color: entity.ColorWhite}, created.Payload)

		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		snapshot := state.Payload.(*entity.ChessState)
		require.True(t, snapshot.WaitingForPlayer)
		require.False(t, snapshot.Started)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		f := newChessFixture(t)

		_, err := f.svc.Create(ctx, "", "Alice")
		require.ErrorIs(t, err, apperror.ErrInvalidInput)

		_, err = f.svc.Create(ctx, "user1", "")
		require.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

func TestChessService_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("second player gets black and the game starts", func(t *testing.T) {
		// Given: a waiting room
		f := newChessFixture(t)
		roomID, err := f.svc.Create(ctx, "user1", "Alice")
		require.NoError(t, err)

		// When: a second player joins
		require.NoError(t, f.svc.Join(ctx, roomID, "user2", "Bob"))

		// Then: the room is started with white to move
		started, ok := f.broadcaster.lastOf(EventChessStarted)
		require.True(t, ok)
		require.Equal(t, "room:"+roomID, started.Target)

		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		snapshot := state.Payload.(*entity.ChessState)
		require.True(t, snapshot.Started)
		require.Equal(t, entity.ColorWhite, snapshot.Turn)
		require.Len(t, snapshot.Players, 2)
		require.Equal(t, entity.ColorBlack, snapshot.Players[1].Color)
	})

	t.Run("reconnect rebroadcasts without reseating", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)
		before := f.broadcaster.count(EventChessStarted)

		err := f.svc.Join(ctx, roomID, "user1", "Alice")

		require.NoError(t, err)
		require.Equal(t, before, f.broadcaster.count(EventChessStarted))

		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		require.Len(t, state.Payload.(*entity.ChessState).Players, 2)
	})

	t.Run("third player is turned away", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)

		err := f.svc.Join(ctx, roomID, "user3", "Carol")

		require.ErrorIs(t, err, apperror.ErrRoomFull)
	})

	t.Run("unknown room code", func(t *testing.T) {
		f := newChessFixture(t)

		err := f.svc.Join(ctx, "NOSUCH", "user1", "Alice")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestChessService_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted move flips the turn and logs the move", func(t *testing.T) {
		// Given: a started game
		f := newChessFixture(t)
		roomID := f.startGame(t)

		// When: white advances the e-pawn
		err := f.svc.Move(ctx, roomID, "user1", "e2", "e4", "")

		// Then: the room state carries the move with black to play
		require.NoError(t, err)

		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		snapshot := state.Payload.(*entity.ChessState)
		require.Equal(t, entity.ColorBlack, snapshot.Turn)
		require.Len(t, snapshot.Moves, 1)
		require.NotNil(t, snapshot.LastMove)
		require.Equal(t, "e2", snapshot.LastMove.From)
		require.Equal(t, "e4", snapshot.LastMove.To)
		require.Equal(t, "user1", snapshot.LastMove.Player)

		ack, ok := f.broadcaster.lastOf(EventChessMove)
		require.True(t, ok)
		require.Equal(t, "player:user1", ack.Target)
	})

	t.Run("illegal move reports the legal destinations", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)

		err := f.svc.Move(ctx, roomID, "user1", "e2", "e5", "")

		require.ErrorIs(t, err, apperror.ErrIllegalMove)

		var illegal *IllegalMoveError
		require.True(t, errors.As(err, &illegal))
		require.Equal(t, "e2", illegal.From)
		require.Equal(t, "e5", illegal.To)
		require.Equal(t, []string{"e3", "e4"}, illegal.LegalMoves)
	})

	t.Run("validation order before the engine is consulted", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)

		// stranger
		require.ErrorIs(t, f.svc.Move(ctx, roomID, "user9", "e2", "e4", ""), apperror.ErrNotAPlayer)
		// black moving on white's turn
		require.ErrorIs(t, f.svc.Move(ctx, roomID, "user2", "e7", "e5", ""), apperror.ErrNotYourTurn)
		// empty origin square
		require.ErrorIs(t, f.svc.Move(ctx, roomID, "user1", "d4", "d5", ""), apperror.ErrNoPieceAtSquare)
		// white grabbing the black pawn
		require.ErrorIs(t, f.svc.Move(ctx, roomID, "user1", "e7", "e5", ""), apperror.ErrWrongPieceColor)
		// nothing reached the engine
		require.Empty(t, f.engine.played)
	})

	t.Run("rejects a move before the opponent arrives", func(t *testing.T) {
		f := newChessFixture(t)
		roomID, err := f.svc.Create(ctx, "user1", "Alice")
		require.NoError(t, err)

		err = f.svc.Move(ctx, roomID, "user1", "e2", "e4", "")

		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("checkmate ends the game and tears the room down after the delay", func(t *testing.T) {
		// Given: the engine will call the next accepted move mate
		f := newChessFixture(t)
		roomID := f.startGame(t)
		f.engine.checkNext = true
		f.engine.checkmateNext = true

		// When: white delivers it
		require.NoError(t, f.svc.Move(ctx, roomID, "user1", "e2", "e4", ""))

		// Then: white wins immediately and the room outlives the result briefly
		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		snapshot := state.Payload.(*entity.ChessState)
		require.True(t, snapshot.Over)
		require.True(t, snapshot.Checkmate)
		require.Equal(t, entity.ColorWhite, snapshot.Winner)

		require.Eventually(t, func() bool {
			return f.broadcaster.count(EventChessEnded) == 1
		}, time.Second, 5*time.Millisecond)

		ended, _ := f.broadcaster.lastOf(EventChessEnded)
		require.Equal(t, endedPayload{Room: roomID, Winner: entity.ColorWhite}, ended.Payload)

		err := f.svc.Move(ctx, roomID, "user2", "e7", "e5", "")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("stalemate is a draw", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)
		f.engine.stalemateNext = true

		require.NoError(t, f.svc.Move(ctx, roomID, "user1", "e2", "e4", ""))

		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		snapshot := state.Payload.(*entity.ChessState)
		require.True(t, snapshot.Over)
		require.True(t, snapshot.Stalemate)
		require.Equal(t, entity.WinnerDraw, snapshot.Winner)
	})

	t.Run("rejects a move after the game is over", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)
		f.engine.checkmateNext = true
		require.NoError(t, f.svc.Move(ctx, roomID, "user1", "e2", "e4", ""))

		err := f.svc.Move(ctx, roomID, "user2", "e7", "e5", "")

		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})
}

func TestChessService_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("revives a finished room and cancels the teardown", func(t *testing.T) {
		// Given: a game just ended, teardown pending
		f := newChessFixture(t)
		roomID := f.startGame(t)
		f.engine.checkmateNext = true
		require.NoError(t, f.svc.Move(ctx, roomID, "user1", "e2", "e4", ""))
		f.engine.checkmateNext = false

		// When: the room is reset before the delay fires
		require.NoError(t, f.svc.Reset(ctx, roomID))

		// Then: the room is back at the start and never torn down
		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		snapshot := state.Payload.(*entity.ChessState)
		require.False(t, snapshot.Over)
		require.Empty(t, snapshot.Moves)
		require.Equal(t, entity.ColorWhite, snapshot.Turn)
		require.True(t, snapshot.Started)

		time.Sleep(3 * testEndDelay)
		require.Zero(t, f.broadcaster.count(EventChessEnded))
		require.NoError(t, f.svc.Move(ctx, roomID, "user1", "e2", "e4", ""))
	})

	t.Run("unknown room is a no-op", func(t *testing.T) {
		f := newChessFixture(t)

		require.NoError(t, f.svc.Reset(ctx, "NOSUCH"))
		require.Empty(t, f.broadcaster.eventNames())
	})
}

func TestChessService_Chat(t *testing.T) {
	ctx := context.Background()

	t.Run("relays sanitized text to the room", func(t *testing.T) {
		// Given: a started game
		f := newChessFixture(t)
		roomID := f.startGame(t)

		// When: a player sends markup-laden text
		err := f.svc.Chat(ctx, roomID, "user1", "Alice", "  <b>good</b> game  ")

		// Then: the room receives the clean message
		require.NoError(t, err)
		event, ok := f.broadcaster.lastOf(EventChessChat)
		require.True(t, ok)
		require.Equal(t, "room:"+roomID, event.Target)

		payload := event.Payload.(chatPayload)
		require.Equal(t, "Alice", payload.Name)
		require.Equal(t, "good game", payload.Message)
		require.False(t, payload.Timestamp.IsZero())
	})

	t.Run("rejects a sender without a seat", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)

		err := f.svc.Chat(ctx, roomID, "user9", "Mallory", "hi")

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("rejects a message that sanitizes to nothing", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)

		err := f.svc.Chat(ctx, roomID, "user1", "Alice", "<script></script>")

		require.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newChessFixture(t)

		err := f.svc.Chat(ctx, "NOSUCH", "user1", "Alice", "hi")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestChessService_HandleDisconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("pauses the room and keeps the survivor's color", func(t *testing.T) {
		// Given: a started game
		f := newChessFixture(t)
		roomID := f.startGame(t)

		// When: white disconnects
		f.svc.HandleDisconnect(ctx, "user1")

		// Then: the room pauses and black keeps their pieces
		left, ok := f.broadcaster.lastOf(EventChessPlayerLeft)
		require.True(t, ok)
		require.Equal(t, leftPayload{Player: "user1"}, left.Payload)

		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		snapshot := state.Payload.(*entity.ChessState)
		require.False(t, snapshot.Started)
		require.True(t, snapshot.WaitingForPlayer)
		require.Len(t, snapshot.Players, 1)
		require.Equal(t, entity.ColorBlack, snapshot.Players[0].Color)
		require.False(t, f.broadcaster.members[roomID]["user1"])
	})

	t.Run("replacement takes the freed color", func(t *testing.T) {
		f := newChessFixture(t)
		roomID := f.startGame(t)
		f.svc.HandleDisconnect(ctx, "user1")

		require.NoError(t, f.svc.Join(ctx, roomID, "user3", "Carol"))

		state, ok := f.broadcaster.lastOf(EventChessState)
		require.True(t, ok)
		snapshot := state.Payload.(*entity.ChessState)
		require.True(t, snapshot.Started)
		require.Len(t, snapshot.Players, 2)
		require.Equal(t, entity.ColorWhite, snapshot.Players[1].Color)
	})

	t.Run("last player out deletes the room and its teardown", func(t *testing.T) {
		// Given: a finished game with teardown pending
		f := newChessFixture(t)
		roomID := f.startGame(t)
		f.engine.checkmateNext = true
		require.NoError(t, f.svc.Move(ctx, roomID, "user1", "e2", "e4", ""))

		// When: both players leave before the delay fires
		f.svc.HandleDisconnect(ctx, "user1")
		f.svc.HandleDisconnect(ctx, "user2")

		// Then: the room is gone and the end event never fires
		require.ErrorIs(t, f.svc.Join(ctx, roomID, "user3", "Carol"), apperror.ErrRoomNotFound)

		time.Sleep(3 * testEndDelay)
		require.Zero(t, f.broadcaster.count(EventChessEnded))
	})
}

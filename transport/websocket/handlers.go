package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yogu-code/chess-backend/internal/apperror"
	"github.com/yogu-code/chess-backend/internal/service"
)

// dispatch routes one inbound message to its action handler. A handler error
// becomes an error reply to the sender; it never tears the connection down.
func (that *Server) dispatch(ctx context.Context, client *Client, data []byte) {
	log := that.logger.With("method", "dispatch", "playerID", client.playerID)

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error("failed to unmarshal message", "error", err)
		that.sendError(client, "", fmt.Errorf("%w: malformed message", apperror.ErrInvalidInput))
		return
	}

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Error("unknown action", "action", msg.Action)
		that.sendError(client, msg.Action, fmt.Errorf("%w: unknown action %q", apperror.ErrInvalidInput, msg.Action))
		return
	}

	if err := handler(ctx, client, &msg); err != nil {
		log.Info("action rejected", "action", msg.Action, "error", err)
		that.sendError(client, msg.Action, err)
	}
}

// sendError replies to the sender with the wire code for the failure.
func (that *Server) sendError(client *Client, action string, err error) {
	payload := ErrorPayload{
		Action: action,
		Code:   apperror.Code(err),
		Error:  err.Error(),
	}

	var illegal *service.IllegalMoveError
	if errors.As(err, &illegal) {
		payload.From = illegal.From
		payload.To = illegal.To
		payload.LegalMoves = illegal.LegalMoves
	}

	that.hub.ToPlayer(client.playerID, "error", payload)
}

func (that *Server) handleGridJoin(ctx context.Context, client *Client, msg *Message) error {
	var payload GridJoinPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	return that.grid.Join(ctx, payload.Room, client.playerID, payload.Name)
}

func (that *Server) handleGridMove(ctx context.Context, client *Client, msg *Message) error {
	var payload GridMovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	if payload.Cell == nil {
		return fmt.Errorf("%w: cell is required", apperror.ErrInvalidInput)
	}

	return that.grid.Move(ctx, payload.Room, client.playerID, *payload.Cell)
}

func (that *Server) handleGridReset(ctx context.Context, _ *Client, msg *Message) error {
	var payload GridResetPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	return that.grid.Reset(ctx, payload.Room)
}

func (that *Server) handleChessCreate(ctx context.Context, client *Client, msg *Message) error {
	var payload ChessCreatePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	_, err := that.chess.Create(ctx, client.playerID, payload.Name)

	return err
}

func (that *Server) handleChessJoin(ctx context.Context, client *Client, msg *Message) error {
	var payload ChessJoinPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	return that.chess.Join(ctx, payload.Room, client.playerID, payload.Name)
}

func (that *Server) handleChessMove(ctx context.Context, client *Client, msg *Message) error {
	var payload ChessMovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	return that.chess.Move(ctx, payload.Room, client.playerID, payload.From, payload.To, payload.Promotion)
}

func (that *Server) handleChessReset(ctx context.Context, _ *Client, msg *Message) error {
	var payload ChessResetPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	return that.chess.Reset(ctx, payload.Room)
}

func (that *Server) handleChessChat(ctx context.Context, client *Client, msg *Message) error {
	var payload ChessChatPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	return that.chess.Chat(ctx, payload.Room, client.playerID, payload.Name, payload.Message)
}

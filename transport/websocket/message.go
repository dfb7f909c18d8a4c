package websocket

import (
	"encoding/json"
)

// Message represents an inbound WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Envelope is the outbound message shape. Every server-to-client send is an
// event name plus a payload.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

type ConnectedPayload struct {
	Player string `json:"player"`
}

type GridJoinPayload struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// GridMovePayload carries the target cell. The pointer distinguishes a
// missing cell from a legitimate move on cell 0.
type GridMovePayload struct {
	Room string `json:"room"`
	Cell *int   `json:"cell"`
}

type GridResetPayload struct {
	Room string `json:"room"`
}

type ChessCreatePayload struct {
	Name string `json:"name"`
}

type ChessJoinPayload struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

type ChessMovePayload struct {
	Room      string `json:"room"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type ChessResetPayload struct {
	Room string `json:"room"`
}

type ChessChatPayload struct {
	Room    string `json:"room"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ErrorPayload is the reply to a rejected action. For illegal chess moves it
// also carries the legal destinations from the origin square.
type ErrorPayload struct {
	Action     string   `json:"action"`
	Code       string   `json:"code"`
	Error      string   `json:"error"`
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	LegalMoves []string `json:"legal_moves,omitempty"`
}

package service

// Outbound event names. Every event that changes room state carries the full
// room snapshot, not a diff.
const (
	EventGridWaiting    = "grid:waiting"
	EventGridJoined     = "grid:joined"
	EventGridState      = "grid:state"
	EventGridPlayerLeft = "grid:player_left"

	EventChessCreated    = "chess:created"
	EventChessStarted    = "chess:started"
	EventChessState      = "chess:state"
	EventChessMove       = "chess:move"
	EventChessEnded      = "chess:ended"
	EventChessChat       = "chess:chat"
	EventChessPlayerLeft = "chess:player_left"
)

// Broadcaster is the transport collaborator. Room membership here is the
// transport-level group used for addressing, distinct from seat bookkeeping;
// sends are fire-and-forget and must never block event processing.
type Broadcaster interface {
	ToRoom(roomID, event string, payload any)
	ToPlayer(playerID, event string, payload any)
	JoinRoom(playerID, roomID string)
	LeaveRoom(playerID, roomID string)
}

package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub tracks live connections keyed by user identity and the room groups
// used for addressing broadcasts. It implements service.Broadcaster; sends
// go through each client's buffered channel and never block the caller.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client         // playerID -> active connection
	rooms   map[string]map[string]bool // roomID -> playerID set
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
	}
}

// register makes the client the active connection for its identity. A client
// already holding the identity is superseded and closed.
func (that *Hub) register(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if old, ok := that.clients[client.playerID]; ok && old != client {
		close(old.send)
	}
	that.clients[client.playerID] = client
}

// unregister drops the client if it is still the identity's active
// connection. A connection superseded by a reconnect leaves no trace here.
func (that *Hub) unregister(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.clients[client.playerID]; ok && current == client {
		delete(that.clients, client.playerID)
		close(client.send)
	}
}

// JoinRoom adds the identity to the room's addressing group.
func (that *Hub) JoinRoom(playerID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rooms[roomID] == nil {
		that.rooms[roomID] = make(map[string]bool)
	}
	that.rooms[roomID][playerID] = true
}

// LeaveRoom removes the identity from the room's addressing group.
func (that *Hub) LeaveRoom(playerID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(members, playerID)
	if len(members) == 0 {
		delete(that.rooms, roomID)
	}
}

// ToRoom sends the event to every connected member of the room.
func (that *Hub) ToRoom(roomID, event string, payload any) {
	data, err := that.encode(event, payload)
	if err != nil {
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for playerID := range that.rooms[roomID] {
		if client, ok := that.clients[playerID]; ok {
			that.deliver(client, data)
		}
	}
}

// ToPlayer sends the event to one identity, if connected.
func (that *Hub) ToPlayer(playerID, event string, payload any) {
	data, err := that.encode(event, payload)
	if err != nil {
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if client, ok := that.clients[playerID]; ok {
		that.deliver(client, data)
	}
}

func (that *Hub) encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		that.logger.Error("failed to marshal event", "event", event, "error", err)
		return nil, err
	}
	return data, nil
}

// deliver queues the message without blocking. A client whose send buffer is
// full is too far behind to save; the message is dropped.
func (that *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		that.logger.Warn("send buffer full, dropping message", "playerID", client.playerID)
	}
}

// isCurrent reports whether the client is still the identity's active
// connection.
func (that *Hub) isCurrent(client *Client) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	current, ok := that.clients[client.playerID]
	return ok && current == client
}

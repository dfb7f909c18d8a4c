// Package registry tracks which transient connection currently carries a
// stable player identity. A reconnect rebinds the identity to the new
// connection; the old connection's teardown must not disturb the new one.
package registry

import "sync"

type Registry struct {
	mu    sync.RWMutex
	conns map[string]string // playerID -> connection id
}

func New() *Registry {
	return &Registry{
		conns: make(map[string]string),
	}
}

// Bind records the connection for an identity. Last write wins.
func (that *Registry) Bind(playerID, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[playerID] = connID
}

// Unbind removes the identity's binding.
func (that *Registry) Unbind(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, playerID)
}

// Lookup returns the connection currently bound to the identity.
func (that *Registry) Lookup(playerID string) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	connID, ok := that.conns[playerID]
	return connID, ok
}

// IsCurrent reports whether connID is still the identity's live connection.
// A closing connection that has already been replaced is not current.
func (that *Registry) IsCurrent(playerID, connID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.conns[playerID] == connID
}

package realtime

import (
	"sync"

	"github.com/inspectify/inspectify/api/internal/account/domain"
)

// Registry maps authenticated identities to their live connection ids.
// A user may hold several sessions at once (tabs, devices).
type Registry interface {
	// Register binds connID to identity. Re-registering a connection moves it.
	Register(connID string, identity domain.Identity)
	// Unregister forgets connID. Unknown ids are ignored.
	Unregister(connID string)
	// Lookup returns the most recently registered connection of userID.
	Lookup(userID string) (string, bool)
	// Sessions returns every live connection of userID, oldest first.
	Sessions(userID string) []string
	// Admins returns every connection registered with the admin role.
	Admins() []string
	// Identity returns the identity bound to connID.
	Identity(connID string) (domain.Identity, bool)
}

// MemoryRegistry はプロセス内メモリに保持する Registry 実装。再起動で消える。
type MemoryRegistry struct {
	mu     sync.RWMutex
	byUser map[string][]string
	byConn map[string]domain.Identity
}

// NewMemoryRegistry returns an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byUser: make(map[string][]string),
		byConn: make(map[string]domain.Identity),
	}
}

func (r *MemoryRegistry) Register(connID string, identity domain.Identity) {
	if connID == "" || identity.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.byConn[connID]; ok {
		r.detachLocked(previous.ID, connID)
	}
	r.byConn[connID] = identity
	r.byUser[identity.ID] = append(r.byUser[identity.ID], connID)
}

func (r *MemoryRegistry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)
	r.detachLocked(identity.ID, connID)
}

func (r *MemoryRegistry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := r.byUser[userID]
	if len(sessions) == 0 {
		return "", false
	}
	return sessions[len(sessions)-1], true
}

func (r *MemoryRegistry) Sessions(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.byUser[userID]...)
}

func (r *MemoryRegistry) Admins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []string
	for connID, identity := range r.byConn {
		if identity.IsAdmin() {
			result = append(result, connID)
		}
	}
	return result
}

func (r *MemoryRegistry) Identity(connID string) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byConn[connID]
	return identity, ok
}

func (r *MemoryRegistry) detachLocked(userID, connID string) {
	sessions := r.byUser[userID]
	for i, id := range sessions {
		if id == connID {
			sessions = append(sessions[:i:i], sessions[i+1:]...)
			break
		}
	}
	if len(sessions) == 0 {
		delete(r.byUser, userID)
		return
	}
	r.byUser[userID] = sessions
}

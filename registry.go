package main

import (
	"sync"

	"github.com/google/uuid"
)

// Identity binds one live connection to a player id, its current room
// (empty means "in lobby") and a display name.
type Identity struct {
	PlayerID string
	RoomID   string
	Nickname string
}

// Registry is the single source of truth for who is connected and which
// room each connection is in. Callers mutate it only from the hub loop;
// the lock exists so read-only snapshots stay safe off-loop.
type Registry struct {
	mu  sync.RWMutex
	ids map[*Client]*Identity
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[*Client]*Identity)}
}

// Register allocates a fresh identity with no room. Never fails.
func (r *Registry) Register(c *Client) *Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident := &Identity{PlayerID: uuid.NewString()}
	r.ids[c] = ident
	return ident
}

func (r *Registry) Lookup(c *Client) (*Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ident, ok := r.ids[c]
	return ident, ok
}

// SetRoom updates the identity's room pointer. Membership must already
// have been validated through the room directory.
func (r *Registry) SetRoom(c *Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ident, ok := r.ids[c]; ok {
		ident.RoomID = roomID
	}
}

func (r *Registry) SetNickname(c *Client, nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ident, ok := r.ids[c]; ok {
		ident.Nickname = nickname
	}
}

func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, c)
}

// All returns a point-in-time snapshot of every connection and its
// identity, for lobby-wide broadcasts and relay target resolution.
func (r *Registry) All() map[*Client]Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := make(map[*Client]Identity, len(r.ids))
	for c, ident := range r.ids {
		snap[c] = *ident
	}
	return snap
}

// FindPlayer resolves a player id to its connection, or nil if the
// player is not currently registered.
func (r *Registry) FindPlayer(playerID string) (*Client, Identity) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c, ident := range r.ids {
		if ident.PlayerID == playerID {
			return c, *ident
		}
	}
	return nil, Identity{}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

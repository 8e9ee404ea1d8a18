package main

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Broadcaster delivers outbound messages. Every primitive is
// best-effort: a closed or backed-up connection drops its copy without
// affecting anyone else's. Scopes are resolved from the registry at
// call time, never cached.
type Broadcaster struct {
	reg *Registry
	log *zap.Logger
}

func NewBroadcaster(reg *Registry, log *zap.Logger) *Broadcaster {
	return &Broadcaster{reg: reg, log: log}
}

// Unicast delivers to exactly one connection.
func (b *Broadcaster) Unicast(c *Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("marshal outbound", zap.Error(err))
		return
	}
	c.enqueue(data)
}

// Roomcast delivers to every connection currently in roomID, except the
// optional excluded one. Departures already applied are respected.
func (b *Broadcaster) Roomcast(roomID string, except *Client, msg any) {
	if roomID == "" {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("marshal outbound", zap.Error(err))
		return
	}
	for c, ident := range b.reg.All() {
		if ident.RoomID != roomID || c == except {
			continue
		}
		c.enqueue(data)
	}
}

// Directory delivers to all registered connections.
func (b *Broadcaster) Directory(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("marshal outbound", zap.Error(err))
		return
	}
	for c := range b.reg.All() {
		c.enqueue(data)
	}
}

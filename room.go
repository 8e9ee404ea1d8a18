package main

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minCapacity = 2
	maxCapacity = 16

	maxRoomNameLen = 40
	maxNicknameLen = 24

	defaultRoomName = "Sala"
	defaultNickname = "Player"

	minPasswordLen = 3
)

// Room visibility and lock modes.
const (
	visPublic  = "public"
	visPrivate = "private"

	lockNone     = "none"
	lockCode     = "code"
	lockPassword = "password"
)

// PlayerState is one member's ephemeral world record. It is replaced
// wholesale on every state update and destroyed when the member leaves.
type PlayerState struct {
	Nickname string
	X, Y, Z  float64
	A        float64
}

type Room struct {
	id         string
	name       string
	visibility string
	lock       string
	secret     string // never leaves the directory except via created ack
	maxPlayers int
	createdAt  time.Time
	members    map[string]struct{}
	world      map[string]*PlayerState
}

// RoomSummary is the privacy-redacted projection of a room used in
// directory listings and join/create acknowledgments.
type RoomSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Visibility       string `json:"visibility"`
	Lock             string `json:"lock"`
	CodeRequired     bool   `json:"codeRequired"`
	PasswordRequired bool   `json:"passwordRequired"`
	MaxPlayers       int    `json:"maxPlayers"`
	Players          int    `json:"players"`
	Status           string `json:"status"`
	CreatedAt        int64  `json:"createdAt"`
}

func (r *Room) summary() RoomSummary {
	status := "open"
	if len(r.members) >= r.maxPlayers {
		status = "full"
	}
	return RoomSummary{
		ID:               r.id,
		Name:             r.name,
		Visibility:       r.visibility,
		Lock:             r.lock,
		CodeRequired:     r.lock == lockCode,
		PasswordRequired: r.lock == lockPassword,
		MaxPlayers:       r.maxPlayers,
		Players:          len(r.members),
		Status:           status,
		CreatedAt:        r.createdAt.UnixMilli(),
	}
}

// Directory owns the set of live rooms. All mutation happens on the hub
// loop; the lock keeps read-only projections safe from other goroutines.
type Directory struct {
	reg *Registry
	log *zap.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewDirectory(reg *Registry, log *zap.Logger) *Directory {
	return &Directory{
		reg:   reg,
		log:   log,
		rooms: make(map[string]*Room),
	}
}

// departure describes the outcome of a leave transition.
type departure struct {
	RoomID      string
	PlayerID    string
	RoomDeleted bool
}

// Create makes a new room with the owner already a member. The returned
// code is non-empty only for private rooms with lock mode "code" and is
// shown to nobody but the creator.
func (d *Directory) Create(c *Client, req createRoomMsg) (RoomSummary, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ident, ok := d.reg.Lookup(c)
	if !ok {
		return RoomSummary{}, "", ErrInvalidConnection
	}
	if ident.RoomID != "" {
		return RoomSummary{}, "", ErrAlreadyInRoom
	}

	visibility := visPublic
	if req.Visibility == visPrivate {
		visibility = visPrivate
	}

	lock := lockNone
	secret := ""
	creatorCode := ""
	if visibility == visPrivate {
		if req.Lock == lockPassword {
			if len([]rune(req.Password)) < minPasswordLen {
				return RoomSummary{}, "", ErrWeakPassword
			}
			lock = lockPassword
			secret = req.Password
		} else {
			lock = lockCode
			secret = newLockCode()
			creatorCode = secret
		}
	}

	capacity := req.MaxPlayers
	if capacity < minCapacity {
		capacity = minCapacity
	}
	if capacity > maxCapacity {
		capacity = maxCapacity
	}

	nickname := ident.Nickname
	if nickname == "" {
		nickname = defaultNickname
	}

	room := &Room{
		id:         uuid.NewString(),
		name:       boundName(req.Name, maxRoomNameLen, defaultRoomName),
		visibility: visibility,
		lock:       lock,
		secret:     secret,
		maxPlayers: capacity,
		createdAt:  time.Now(),
		members:    map[string]struct{}{ident.PlayerID: {}},
		world:      map[string]*PlayerState{ident.PlayerID: {Nickname: nickname}},
	}
	d.rooms[room.id] = room

	d.reg.SetRoom(c, room.id)
	d.reg.SetNickname(c, nickname)

	d.log.Info("room created",
		zap.String("room", room.id),
		zap.String("owner", ident.PlayerID),
		zap.String("visibility", visibility),
		zap.String("lock", lock),
		zap.Int("capacity", capacity))

	return room.summary(), creatorCode, nil
}

// Join validates capacity and the lock secret, then admits the player.
// The resolve-and-mutate sequence runs under one lock so racing joins
// cannot both slip past a full room.
func (d *Directory) Join(c *Client, req joinRoomMsg) (RoomSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ident, ok := d.reg.Lookup(c)
	if !ok {
		return RoomSummary{}, ErrInvalidConnection
	}
	if ident.RoomID != "" {
		return RoomSummary{}, ErrAlreadyInRoom
	}

	room, ok := d.rooms[req.RoomID]
	if !ok {
		return RoomSummary{}, ErrNoSuchRoom
	}
	if len(room.members) >= room.maxPlayers {
		return RoomSummary{}, ErrRoomFull
	}

	switch room.lock {
	case lockCode:
		code := strings.ToUpper(strings.TrimSpace(req.Code))
		if code != room.secret {
			return RoomSummary{}, ErrBadCode
		}
	case lockPassword:
		if req.Password != room.secret {
			return RoomSummary{}, ErrBadPassword
		}
	}

	nickname := boundName(req.Nickname, maxNicknameLen, defaultNickname)
	room.members[ident.PlayerID] = struct{}{}
	room.world[ident.PlayerID] = &PlayerState{Nickname: nickname}

	d.reg.SetRoom(c, room.id)
	d.reg.SetNickname(c, nickname)

	d.log.Info("player joined",
		zap.String("room", room.id),
		zap.String("player", ident.PlayerID),
		zap.Int("players", len(room.members)))

	return room.summary(), nil
}

// Leave removes the connection's player from its room, deleting the
// room when it empties. No-op if the identity holds no room. It is the
// terminal step of both explicit leave requests and connection teardown.
func (d *Directory) Leave(c *Client) (departure, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ident, ok := d.reg.Lookup(c)
	if !ok || ident.RoomID == "" {
		return departure{}, false
	}

	dep := departure{RoomID: ident.RoomID, PlayerID: ident.PlayerID}
	d.reg.SetRoom(c, "")

	room, ok := d.rooms[dep.RoomID]
	if !ok {
		return dep, true
	}

	delete(room.members, dep.PlayerID)
	delete(room.world, dep.PlayerID)

	if len(room.members) == 0 {
		delete(d.rooms, room.id)
		dep.RoomDeleted = true
		d.log.Info("room destroyed", zap.String("room", room.id))
	} else {
		d.log.Info("player left",
			zap.String("room", room.id),
			zap.String("player", dep.PlayerID),
			zap.Int("players", len(room.members)))
	}

	return dep, true
}

// UpdateState replaces the player's world record wholesale and returns
// the room id plus a full snapshot of every member's state. No-op if
// the identity has no room.
func (d *Directory) UpdateState(c *Client, vec stateVec) (string, worldMsg, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ident, ok := d.reg.Lookup(c)
	if !ok || ident.RoomID == "" {
		return "", worldMsg{}, false
	}
	room, ok := d.rooms[ident.RoomID]
	if !ok {
		return "", worldMsg{}, false
	}

	room.world[ident.PlayerID] = &PlayerState{
		Nickname: ident.Nickname,
		X:        float64(vec.X),
		Y:        float64(vec.Y),
		Z:        float64(vec.Z),
		A:        float64(vec.A),
	}

	return room.id, room.worldSnapshot(), true
}

func (r *Room) worldSnapshot() worldMsg {
	msg := worldMsg{T: "world", Players: make([]worldEntry, 0, len(r.members))}
	for id := range r.members {
		st := r.world[id]
		if st == nil {
			st = &PlayerState{}
		}
		msg.Players = append(msg.Players, worldEntry{
			ID:       id,
			Nickname: st.Nickname,
			X:        st.X,
			Y:        st.Y,
			Z:        st.Z,
			A:        st.A,
		})
	}
	sort.Slice(msg.Players, func(i, j int) bool { return msg.Players[i].ID < msg.Players[j].ID })
	return msg
}

// Roster lists a room's current members.
func (d *Directory) Roster(roomID string) []rosterEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	roster := make([]rosterEntry, 0, len(room.members))
	for id := range room.members {
		nickname := ""
		if st := room.world[id]; st != nil {
			nickname = st.Nickname
		}
		roster = append(roster, rosterEntry{ID: id, Nickname: nickname})
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	return roster
}

// Summaries is the redacted directory listing, oldest room first.
// Lock secrets never appear in it.
func (d *Directory) Summaries() []RoomSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]RoomSummary, 0, len(d.rooms))
	for _, room := range d.rooms {
		out = append(out, room.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// boundName trims s, truncates it to max runes and falls back to def
// when nothing is left.
func boundName(s string, max int, def string) string {
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > max {
		s = string(runes[:max])
	}
	if s == "" {
		return def
	}
	return s
}

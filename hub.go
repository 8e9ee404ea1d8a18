package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

const chatMaxLen = 220

// Hub is the session controller: a single goroutine that interprets
// every inbound frame and drives the registry, the room directory and
// the broadcaster. Routing all mutation through one loop keeps each
// join/leave/state transition atomic and keeps per-connection delivery
// order equal to processing order.
type Hub struct {
	cfg   *Config
	log   *zap.Logger
	reg   *Registry
	rooms *Directory
	cast  *Broadcaster

	registerCh   chan *Client
	unregisterCh chan *Client
	inboundCh    chan inboundFrame
}

type inboundFrame struct {
	client *Client
	data   []byte
}

func NewHub(cfg *Config, log *zap.Logger) *Hub {
	reg := NewRegistry()
	return &Hub{
		cfg:          cfg,
		log:          log,
		reg:          reg,
		rooms:        NewDirectory(reg, log),
		cast:         NewBroadcaster(reg, log),
		registerCh:   make(chan *Client, 64),
		unregisterCh: make(chan *Client, 64),
		inboundCh:    make(chan inboundFrame, 2048),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.registerCh:
			h.handleConnect(c)

		case c := <-h.unregisterCh:
			h.handleDisconnect(c)

		case frame := <-h.inboundCh:
			h.dispatch(frame.client, frame.data)
		}
	}
}

func (h *Hub) Register(c *Client)   { h.registerCh <- c }
func (h *Hub) Unregister(c *Client) { h.unregisterCh <- c }

func (h *Hub) Inbound(c *Client, data []byte) {
	h.inboundCh <- inboundFrame{client: c, data: data}
}

// handleConnect mints the identity, greets the connection with its id
// and the current directory, and starts the pumps.
func (h *Hub) handleConnect(c *Client) {
	ident := h.reg.Register(c)
	h.log.Info("connected", zap.String("player", ident.PlayerID))

	h.cast.Unicast(c, welcomeMsg{T: "welcome", PlayerID: ident.PlayerID})
	h.cast.Unicast(c, h.directoryMsg())

	go c.ReadPump()
	go c.WritePump()
}

// handleDisconnect runs the leave transition exactly as an explicit
// leave_room would, then retires the identity. A transport drop is a
// permanent departure; there is no resumption.
func (h *Hub) handleDisconnect(c *Client) {
	ident, ok := h.reg.Lookup(c)
	if !ok {
		return
	}
	playerID := ident.PlayerID

	dep, inRoom := h.rooms.Leave(c)
	if inRoom {
		h.cast.Roomcast(dep.RoomID, nil, peerLeftMsg{T: "peer_left", ID: dep.PlayerID})
	}

	h.reg.Unregister(c)
	h.log.Info("disconnected", zap.String("player", playerID))

	h.cast.Directory(h.directoryMsg())
}

// dispatch interprets one inbound frame. Unparseable frames are dropped
// as transport noise; recognized kinds that fail are answered with an
// error notification on the offending connection only.
func (h *Hub) dispatch(c *Client, data []byte) {
	ident, ok := h.reg.Lookup(c)
	if !ok {
		h.sendError(c, ErrInvalidConnection)
		return
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return
	}

	switch env.T {
	case kindList:
		h.cast.Unicast(c, h.directoryMsg())

	case kindCreate:
		var req createRoomMsg
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		sum, code, err := h.rooms.Create(c, req)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.cast.Unicast(c, createdMsg{T: "created", Room: sum, Code: code})
		h.cast.Directory(h.directoryMsg())

	case kindJoin:
		var req joinRoomMsg
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		sum, err := h.rooms.Join(c, req)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.cast.Unicast(c, joinedMsg{T: "joined", Room: sum, PlayerID: ident.PlayerID})
		h.cast.Unicast(c, rosterMsg{T: "roster", Roster: h.rooms.Roster(sum.ID)})
		h.cast.Roomcast(sum.ID, c, peerJoinedMsg{T: "peer_joined", ID: ident.PlayerID, Nickname: ident.Nickname})
		h.cast.Directory(h.directoryMsg())

	case kindLeave:
		dep, inRoom := h.rooms.Leave(c)
		if !inRoom {
			return
		}
		h.cast.Roomcast(dep.RoomID, nil, peerLeftMsg{T: "peer_left", ID: dep.PlayerID})
		h.cast.Directory(h.directoryMsg())

	case kindState:
		var req stateMsg
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		roomID, snapshot, ok := h.rooms.UpdateState(c, req.State)
		if !ok {
			return
		}
		h.cast.Roomcast(roomID, nil, snapshot)

	case kindChat:
		if ident.RoomID == "" {
			return
		}
		var req chatMsg
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		text := strings.TrimSpace(req.Text)
		if text == "" {
			return
		}
		if runes := []rune(text); len(runes) > chatMaxLen {
			text = string(runes[:chatMaxLen])
		}
		h.cast.Roomcast(ident.RoomID, nil, chatEventMsg{
			T:    "chat",
			From: ident.Nickname,
			ID:   ident.PlayerID,
			Text: text,
			At:   time.Now().UnixMilli(),
		})

	case kindRTCOffer, kindRTCAnswer, kindRTCIce:
		if ident.RoomID == "" {
			return
		}
		var req rtcMsg
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		// Relay only inside the sender's room; a vanished target means
		// silent drop, the sender learns of departures via peer_left.
		target, targetIdent := h.reg.FindPlayer(req.To)
		if target == nil || targetIdent.RoomID != ident.RoomID {
			return
		}
		h.cast.Unicast(target, relayMsg{T: env.T, From: ident.PlayerID, Payload: req.Payload})

	default:
		h.sendError(c, ErrUnknownKind)
	}
}

func (h *Hub) directoryMsg() roomsMsg {
	return roomsMsg{T: "rooms", Rooms: h.rooms.Summaries()}
}

func (h *Hub) sendError(c *Client, err error) {
	h.cast.Unicast(c, errorMsg{T: "error", Message: err.Error()})
}

func (h *Hub) closeAll() {
	for c := range h.reg.All() {
		h.reg.Unregister(c)
		c.Close()
	}
}

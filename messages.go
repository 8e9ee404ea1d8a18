package main

import "encoding/json"

// All wire messages are JSON text frames discriminated by a "t" field.
// Inbound frames are decoded in two phases: the envelope first, then the
// kind-specific struct. Malformed frames are dropped silently.

const (
	kindList      = "list"
	kindCreate    = "create_room"
	kindJoin      = "join_room"
	kindLeave     = "leave_room"
	kindState     = "state"
	kindChat      = "chat"
	kindRTCOffer  = "rtc_offer"
	kindRTCAnswer = "rtc_answer"
	kindRTCIce    = "rtc_ice"
)

type envelope struct {
	T string `json:"t"`
}

type createRoomMsg struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	MaxPlayers int    `json:"maxPlayers"`
	Lock       string `json:"lock"`
	Password   string `json:"password"`
}

type joinRoomMsg struct {
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type stateMsg struct {
	State stateVec `json:"state"`
}

// stateVec tolerates missing or non-numeric fields, which decode to zero.
type stateVec struct {
	X looseFloat `json:"x"`
	Y looseFloat `json:"y"`
	Z looseFloat `json:"z"`
	A looseFloat `json:"a"`
}

type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}

type chatMsg struct {
	Text string `json:"text"`
}

type rtcMsg struct {
	To      string          `json:"to"`
	Payload json.RawMessage `json:"payload"`
}

// Server→client messages.

type welcomeMsg struct {
	T        string `json:"t"`
	PlayerID string `json:"playerId"`
}

type roomsMsg struct {
	T     string        `json:"t"`
	Rooms []RoomSummary `json:"rooms"`
}

type createdMsg struct {
	T    string      `json:"t"`
	Room RoomSummary `json:"room"`
	Code string      `json:"code,omitempty"`
}

type joinedMsg struct {
	T        string      `json:"t"`
	Room     RoomSummary `json:"room"`
	PlayerID string      `json:"playerId"`
}

type rosterMsg struct {
	T      string        `json:"t"`
	Roster []rosterEntry `json:"roster"`
}

type rosterEntry struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

type peerJoinedMsg struct {
	T        string `json:"t"`
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

type peerLeftMsg struct {
	T  string `json:"t"`
	ID string `json:"id"`
}

type worldMsg struct {
	T       string       `json:"t"`
	Players []worldEntry `json:"players"`
}

type worldEntry struct {
	ID       string  `json:"id"`
	Nickname string  `json:"nickname"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	A        float64 `json:"a"`
}

type chatEventMsg struct {
	T    string `json:"t"`
	From string `json:"from"`
	ID   string `json:"id"`
	Text string `json:"text"`
	At   int64  `json:"at"`
}

// relayMsg echoes a signaling envelope to its target; T matches the
// original rtc_* kind and Payload is forwarded uninterpreted.
type relayMsg struct {
	T       string          `json:"t"`
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type errorMsg struct {
	T       string `json:"t"`
	Message string `json:"message"`
}

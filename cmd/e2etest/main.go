// E2E test: walks the lobby protocol with two live WebSocket clients.
// Usage: go run ./cmd/e2etest -server ws://localhost:8080/ws
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

var serverURL = flag.String("server", "ws://localhost:8080/ws", "lobby WebSocket URL")

type message map[string]any

func dial() *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	return conn
}

func send(conn *websocket.Conn, msg message) {
	data, _ := json.Marshal(msg)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Fatal("send:", err)
	}
}

// expect reads frames until one with the wanted kind arrives, skipping
// interleaved directory refreshes and world snapshots.
func expect(conn *websocket.Conn, kind string) message {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("waiting for %q: %v", kind, err)
		}
		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Fatalf("waiting for %q: bad frame %s", kind, data)
		}
		if msg["t"] == kind {
			return msg
		}
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	// --- Client A connects and creates a private room ---
	log.Println(">> A connecting...")
	a := dial()
	defer a.Close()
	welcomeA := expect(a, "welcome")
	aID := welcomeA["playerId"].(string)
	log.Printf("   A is %s ✓", aID)

	send(a, message{"t": "create_room", "name": "e2e", "visibility": "private", "lock": "code", "maxPlayers": 2})
	created := expect(a, "created")
	room := created["room"].(map[string]any)
	roomID := room["id"].(string)
	code := created["code"].(string)
	if len(code) != 6 {
		log.Fatalf("expected 6-char code, got %q", code)
	}
	log.Printf("   room %s created, code %s ✓", roomID, code)

	// --- Client B: wrong code rejected, right code admitted ---
	log.Println(">> B connecting...")
	b := dial()
	defer b.Close()
	welcomeB := expect(b, "welcome")
	bID := welcomeB["playerId"].(string)
	log.Printf("   B is %s ✓", bID)

	send(b, message{"t": "join_room", "roomId": roomID, "nickname": "Bea", "code": "WRONG1"})
	errMsg := expect(b, "error")
	log.Printf("   wrong code rejected: %q ✓", errMsg["message"])

	send(b, message{"t": "join_room", "roomId": roomID, "nickname": "Bea", "code": code})
	expect(b, "joined")
	roster := expect(b, "roster")
	log.Printf("   B joined, roster has %d members ✓", len(roster["roster"].([]any)))

	peerJoined := expect(a, "peer_joined")
	if peerJoined["id"] != bID {
		log.Fatalf("A saw peer_joined for %v, want %s", peerJoined["id"], bID)
	}
	log.Println("   A saw B join ✓")

	// --- Chat both ways ---
	send(a, message{"t": "chat", "text": "hola desde A"})
	chatAtB := expect(b, "chat")
	log.Printf("   B got chat: %q ✓", chatAtB["text"])

	send(b, message{"t": "chat", "text": "hola desde B"})
	chatAtA := expect(a, "chat")
	log.Printf("   A got chat: %q ✓", chatAtA["text"])

	// --- World state snapshot ---
	send(a, message{"t": "state", "state": message{"x": 1.5, "y": 0, "z": -2, "a": 90}})
	world := expect(b, "world")
	if players := world["players"].([]any); len(players) != 2 {
		log.Fatalf("world snapshot has %d players, want 2", len(players))
	}
	log.Println("   world snapshot at B has both players ✓")

	// --- Signaling relay A→B ---
	send(a, message{"t": "rtc_offer", "to": bID, "payload": message{"sdp": "fake-offer"}})
	offer := expect(b, "rtc_offer")
	if offer["from"] != aID {
		log.Fatalf("relay from %v, want %s", offer["from"], aID)
	}
	log.Println("   rtc_offer relayed to B ✓")

	// --- Abrupt disconnect of A ---
	log.Println(">> A disconnecting abruptly...")
	a.Close()
	peerLeft := expect(b, "peer_left")
	if peerLeft["id"] != aID {
		log.Fatalf("B saw peer_left for %v, want %s", peerLeft["id"], aID)
	}
	log.Println("   B saw A leave ✓")

	fmt.Println()
	log.Println("═══════════════════════════════")
	log.Println("  E2E TEST PASSED ✓")
	log.Println("═══════════════════════════════")
}

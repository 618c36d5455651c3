package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// newUpgrader builds the websocket handshake upgrader for this process.
// CheckOrigin applies the same cross-origin policy as the HTTP CORS
// middleware in http.go, generalizing the teacher's permissive
// "allow everything" demo check to the spec's origin allowlist.
func newUpgrader(m *Manager) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(m.cfg, r.Header.Get("Origin"))
		},
	}
}

// HandleWS upgrades the request to a websocket and starts the per-connection
// read/write pumps. A connection carries no room/player identity until its
// first createRoom or joinRoom command succeeds.
func HandleWS(m *Manager) http.HandlerFunc {
	upgrader := newUpgrader(m)
	return func(w http.ResponseWriter, r *http.Request) {
		wantsCompression := compressionRequested(r)
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.log.Warnw("websocket upgrade failed", "error", err)
			return
		}
		conn := NewClientConn(ws)
		conn.compressionOK = wantsCompression
		go conn.writePump()
		go readPump(m, conn)
	}
}

// compressionRequested reads the client's flate-support signal off the
// handshake request. Browsers can't set arbitrary headers on the WebSocket
// constructor, so this is a query parameter rather than a header; a client
// that can't inflate a compressed frame connects with "?compression=0" and
// every frame for that connection goes out raw regardless of size. Absent
// the parameter, compression is assumed supported (the common case).
func compressionRequested(r *http.Request) bool {
	switch r.URL.Query().Get("compression") {
	case "0", "false", "off":
		return false
	default:
		return true
	}
}

// readPump is the per-connection inbound loop: it reads one wire frame at a
// time and hands it to dispatch, which parses the command tag and either
// routes straight to the Manager (createRoom/joinRoom, which may not have a
// room yet) or enqueues a roomCommand onto the bound room's own goroutine.
func readPump(m *Manager, conn *ClientConn) {
	defer func() {
		m.handleDisconnect(conn)
		conn.Close()
	}()
	conn.ws.SetReadLimit(1 << 20)
	conn.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, payload, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}
		dispatch(m, conn, payload)
	}
}

// dispatch is the "tagged command variant parsed at the transport edge"
// the design notes call for: it reads only the envelope's type tag, then
// unmarshals the full event-specific shape and routes it. Malformed JSON or
// an unrecognized type is a precondition miss — silently ignored, never a
// crash, per the error taxonomy.
func dispatch(m *Manager, conn *ClientConn, payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return
	}

	switch env.Type {
	case EventCreateRoom:
		var msg createRoomMsg
		if json.Unmarshal(payload, &msg) == nil {
			m.handleCreateRoom(conn, msg)
		}
	case EventJoinRoom:
		var msg joinRoomMsg
		if json.Unmarshal(payload, &msg) == nil {
			m.handleJoinRoom(conn, msg)
		}
	case EventSetPlayerName:
		var msg setPlayerNameMsg
		if json.Unmarshal(payload, &msg) == nil {
			withRoom(m, conn, func(r *Room) {
				r.Enqueue(&cmdSetPlayerName{playerID: conn.playerID, name: msg.Name})
			})
		}
	case EventSetWorld:
		var msg setWorldMsg
		if json.Unmarshal(payload, &msg) == nil {
			withRoom(m, conn, func(r *Room) {
				r.Enqueue(&cmdSetWorld{playerID: conn.playerID, worldID: normalizeWorld(msg.World)})
			})
		}
	case EventSetLevel:
		var msg setLevelMsg
		if json.Unmarshal(payload, &msg) == nil {
			world := firstNonEmpty(msg.Level, msg.World)
			withRoom(m, conn, func(r *Room) {
				r.Enqueue(&cmdSetWorld{playerID: conn.playerID, worldID: normalizeWorld(world)})
			})
		}
	case EventSelectHero:
		var msg selectHeroMsg
		if json.Unmarshal(payload, &msg) == nil {
			withRoom(m, conn, func(r *Room) {
				r.Enqueue(&cmdSelectHero{conn: conn, playerID: conn.playerID, hero: msg.Hero})
			})
		}
	case EventSetReady:
		var msg setReadyMsg
		if json.Unmarshal(payload, &msg) == nil {
			withRoom(m, conn, func(r *Room) {
				r.Enqueue(&cmdSetReady{conn: conn, playerID: conn.playerID, ready: msg.Ready})
			})
		}
	case EventStartGameNow:
		withRoom(m, conn, func(r *Room) {
			r.Enqueue(&cmdStartGameNow{conn: conn, playerID: conn.playerID})
		})
	case EventPlayerInput, EventPlayerMove:
		var msg playerInputMsg
		if json.Unmarshal(payload, &msg) == nil {
			input := parseInputFrame(msg)
			height, hasHeight := msg.reportedViewportHeight()
			withRoom(m, conn, func(r *Room) {
				r.Enqueue(&cmdPlayerInput{playerID: conn.playerID, input: input, height: height, hasHeight: hasHeight})
			})
		}
	case EventDisconnect:
		m.handleDisconnect(conn)
	}
}

// withRoom enqueues fn's command only if conn is currently bound to a live
// room; an unbound connection (never joined) or one whose room has since
// been torn down is a precondition miss and is silently dropped.
func withRoom(m *Manager, conn *ClientConn, fn func(r *Room)) {
	if conn.roomCode == "" || conn.playerID == "" {
		return
	}
	r, ok := m.lookup(conn.roomCode)
	if !ok {
		return
	}
	fn(r)
}

// sendTo marshals payload as event's wire frame and enqueues it directly on
// conn. It is the default Room.sendFn and is also used for denials issued
// before any room exists to enqueue onto.
func sendTo(conn *ClientConn, event string, payload interface{}) {
	frame, err := marshalFrame(event, payload)
	if err != nil {
		return
	}
	conn.Enqueue(frame)
}

// marshalFrame assembles the wire envelope: payload's own fields plus a
// "type" tag naming the event. This lets callers pass either a plain map
// (denials, joinSuccess) or a struct that already declares its own Type
// field (roomStateView, gameStateView) without special-casing either.
func marshalFrame(event string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return json.Marshal(map[string]any{"type": event, "payload": payload})
	}
	fields["type"] = event
	return json.Marshal(fields)
}

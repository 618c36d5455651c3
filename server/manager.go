package server

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"platformserver/config"
)

// Manager is the process-wide coordinator: the room table and the
// connection registry are the only pieces of shared state touched outside
// a room's own goroutine, and only for create/lookup/delete — generalizing
// the teacher's single-room RoomManager singleton to the many concurrently
// running rooms this spec requires.
type Manager struct {
	cfg config.Config
	log *zap.SugaredLogger

	mu    sync.RWMutex
	rooms map[string]*Room

	conns *ConnectionRegistry
}

// NewManager returns an empty coordinator ready to accept connections.
func NewManager(cfg config.Config, log *zap.SugaredLogger) *Manager {
	return &Manager{
		cfg:   cfg,
		log:   log,
		rooms: make(map[string]*Room),
		conns: NewConnectionRegistry(),
	}
}

func normalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (m *Manager) lookup(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

// RoomCount reports the number of live rooms, for the health endpoint.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// PlayerCount sums each room's atomically-tracked membership count, for the
// health endpoint. It never reads a room's Players map directly — that map
// is owned exclusively by the room's own goroutine.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, r := range m.rooms {
		total += r.metrics.PlayerCountValue()
	}
	return total
}

// roomSnapshot is the read-only summary exposed at /admin/rooms.
type roomSnapshot struct {
	Code       string         `json:"code"`
	MaxPlayers int            `json:"maxPlayers"`
	Metrics    map[string]any `json:"metrics"`
}

func (m *Manager) allRoomSnapshots() []roomSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]roomSnapshot, 0, len(m.rooms))
	for code, r := range m.rooms {
		out = append(out, roomSnapshot{Code: code, MaxPlayers: r.MaxPlayers, Metrics: r.metrics.Snapshot()})
	}
	return out
}

func (m *Manager) roomMetrics(code string) (map[string]any, bool) {
	r, ok := m.lookup(normalizeRoomCode(code))
	if !ok {
		return nil, false
	}
	return r.metrics.Snapshot(), true
}

// handleCreateRoom implements the createRoom wire event. It runs on the
// HTTP/websocket goroutine, not a room goroutine, because the room doesn't
// exist yet — table mutation happens under m.mu, exactly the "coordinator"
// role the design notes describe.
func (m *Manager) handleCreateRoom(conn *ClientConn, msg createRoomMsg) {
	code := normalizeRoomCode(msg.RoomCode)
	if code == "" || msg.MaxPlayers < 1 || msg.MaxPlayers > 4 {
		sendTo(conn, EventCreateDenied, denialPayload("Invalid room parameters"))
		return
	}
	hostID := PlayerID(msg.HostID)
	if hostID == "" {
		sendTo(conn, EventCreateDenied, denialPayload("Missing hostId"))
		return
	}

	m.mu.Lock()
	if _, exists := m.rooms[code]; exists {
		m.mu.Unlock()
		sendTo(conn, EventCreateDenied, denialPayload("Room already exists"))
		return
	}
	r := NewRoom(code, msg.MaxPlayers, hostID, msg.PlayerName, m.cfg, m.log)
	r.broadcastFn = func(event string, payload interface{}) { m.broadcastRoom(code, event, payload) }
	r.bindFn = func(c *ClientConn, pid PlayerID) []*ClientConn { return m.conns.Bind(c, code, pid) }
	r.onEmpty = m.destroyRoom
	// All one-time setup happens before the room is published into m.rooms,
	// so nothing outside this goroutine can observe it mid-construction;
	// afterward the room is reached only through its command channel.
	if world := firstNonEmpty(msg.World, msg.Level); len(world) > 0 {
		r.World = normalizeWorld(world)
	}
	if msg.CanvasHeight != nil && r.World == World2 {
		r.World2BaseY = ClampWorld2BaseY(*msg.CanvasHeight - 80)
	}
	r.WorldRuntime = CloneRuntime(r.World, r.World2BaseY)
	r.GameState.World = r.World
	m.rooms[code] = r
	m.mu.Unlock()

	conn.SetMetrics(r.metrics)
	m.conns.Bind(conn, code, hostID)
	go r.run()

	sendTo(conn, EventJoinSuccess, joinSuccessPayload(r, hostID))
	r.Enqueue(&cmdEmitInitialState{})
}

func firstNonEmpty(candidates ...[]byte) []byte {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

// handleJoinRoom implements the joinRoom wire event for a room that already
// exists; everything that needs serialized access to room membership is
// pushed onto the room's own command queue as cmdJoin.
func (m *Manager) handleJoinRoom(conn *ClientConn, msg joinRoomMsg) {
	code := normalizeRoomCode(msg.RoomCode)
	r, ok := m.lookup(code)
	if !ok {
		sendTo(conn, EventJoinDenied, denialPayload("Room not found"))
		return
	}
	r.Enqueue(&cmdJoin{conn: conn, playerID: PlayerID(msg.PlayerID), name: msg.Name})
}

// destroyRoom is invoked (from a room's own goroutine, via onEmpty) once
// the last player's grace timer has expired with nobody left. It is the
// only place a room is removed from the table.
func (m *Manager) destroyRoom(code string) {
	m.mu.Lock()
	r, ok := m.rooms[code]
	if ok {
		delete(m.rooms, code)
	}
	m.mu.Unlock()
	if ok {
		r.stop()
	}
	m.conns.DropRoom(code)
}

// broadcastRoom fans a marshaled frame out to every connection currently
// bound to code. Best-effort: a full per-connection queue silently drops
// the frame rather than blocking the room's tick goroutine that produced it.
func (m *Manager) broadcastRoom(code string, event string, payload interface{}) {
	frame, err := marshalFrame(event, payload)
	if err != nil {
		m.log.Errorw("marshal broadcast frame failed", "room", code, "event", event, "error", err)
		return
	}
	for _, c := range m.conns.ConnsFor(code) {
		c.Enqueue(frame)
	}
}

// handleDisconnect is called once a connection's read loop exits (and on an
// explicit disconnect event); it first removes the connection from the
// registry. Only when the player has no other live connection left does the
// grace timer get armed, per spec.
func (m *Manager) handleDisconnect(conn *ClientConn) {
	roomCode, pid := conn.roomCode, conn.playerID
	m.conns.Unbind(conn)
	if roomCode == "" || pid == "" {
		return
	}
	if m.conns.PlayerHasLiveConn(roomCode, pid) {
		return
	}
	if r, ok := m.lookup(roomCode); ok {
		r.Enqueue(&cmdDisconnectConn{playerID: pid})
	}
}

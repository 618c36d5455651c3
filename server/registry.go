package server

import "sync"

// ConnectionRegistry is the Connection Registry component: it tracks, per
// room, which connections are bound to which logical player, so that a
// broadcast can reach every live socket and a reconnecting player's stale
// sockets can be found and detached. The room's own goroutine reaches it
// only through the Manager-supplied closures (bindFn, broadcastFn, onEmpty);
// the registry's own mutex serializes every access.
type ConnectionRegistry struct {
	mu   sync.Mutex
	room map[string]map[PlayerID]map[*ClientConn]struct{}
}

// NewConnectionRegistry returns an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{room: make(map[string]map[PlayerID]map[*ClientConn]struct{})}
}

// Bind records that conn now speaks for (roomCode, pid), updating conn's own
// binding fields, and returns any other connections that were already bound
// to the same player in the same room — the reconnect path (cmdJoin, through
// Room.bindFn and Room.detachStale) closes those, matching the rule that a
// rejoin keeps the LobbyPlayer but drops the player's old sockets.
func (cr *ConnectionRegistry) Bind(conn *ClientConn, roomCode string, pid PlayerID) []*ClientConn {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	players, ok := cr.room[roomCode]
	if !ok {
		players = make(map[PlayerID]map[*ClientConn]struct{})
		cr.room[roomCode] = players
	}
	conns, ok := players[pid]
	if !ok {
		conns = make(map[*ClientConn]struct{})
		players[pid] = conns
	}

	var stale []*ClientConn
	for c := range conns {
		if c != conn {
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		delete(conns, c)
	}

	conns[conn] = struct{}{}
	conn.roomCode = roomCode
	conn.playerID = pid
	return stale
}

// Unbind removes conn from whatever room/player it was bound to. Safe to
// call on a connection that was never bound.
func (cr *ConnectionRegistry) Unbind(conn *ClientConn) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if conn.roomCode == "" {
		return
	}
	players, ok := cr.room[conn.roomCode]
	if !ok {
		return
	}
	if conns, ok := players[conn.playerID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(players, conn.playerID)
		}
	}
	if len(players) == 0 {
		delete(cr.room, conn.roomCode)
	}
}

// PlayerHasLiveConn reports whether any connection is currently bound to pid
// within roomCode.
func (cr *ConnectionRegistry) PlayerHasLiveConn(roomCode string, pid PlayerID) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	players, ok := cr.room[roomCode]
	if !ok {
		return false
	}
	conns, ok := players[pid]
	return ok && len(conns) > 0
}

// ConnsFor returns every connection currently bound to roomCode, for
// broadcast fan-out.
func (cr *ConnectionRegistry) ConnsFor(roomCode string) []*ClientConn {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	players, ok := cr.room[roomCode]
	if !ok {
		return nil
	}
	out := make([]*ClientConn, 0, len(players))
	for _, conns := range players {
		for c := range conns {
			out = append(out, c)
		}
	}
	return out
}

// DropRoom forgets every connection binding for roomCode; the connections
// themselves are not closed (callers that want that iterate ConnsFor first).
func (cr *ConnectionRegistry) DropRoom(roomCode string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	delete(cr.room, roomCode)
}

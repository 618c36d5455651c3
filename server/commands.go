package server

// roomCommand is the tagged variant every inbound event becomes once parsed
// at the transport edge (net_ws.go / manager.go). The room's own goroutine
// is the only place that matches on it, via apply.
type roomCommand interface {
	apply(r *Room, now int64)
}

// cmdJoin is joinRoom for a room that already exists (room creation itself
// is handled by the Manager, since there is no room to enqueue onto yet).
type cmdJoin struct {
	conn     *ClientConn
	playerID PlayerID
	name     string
}

func (c *cmdJoin) apply(r *Room, now int64) {
	if _, exists := r.Players[c.playerID]; exists {
		// Reconnect: detach any stale sockets bound to this player, keep
		// their lobby state (hero, ready, name, slot) untouched.
		r.cancelGrace(c.playerID)
		c.conn.SetMetrics(r.metrics)
		if r.bindFn != nil {
			r.detachStale(r.bindFn(c.conn, c.playerID))
		}
		r.sendFn(c.conn, EventJoinSuccess, joinSuccessPayload(r, c.playerID))
		r.emitRoomState()
		return
	}

	if r.Started {
		r.sendFn(c.conn, EventJoinDenied, denialPayload("Room already started"))
		return
	}
	if len(r.Players) >= r.MaxPlayers {
		r.sendFn(c.conn, EventJoinDenied, denialPayload("Room is full"))
		return
	}

	slotIdx := r.firstVacantSlot()
	if slotIdx == -1 {
		r.sendFn(c.conn, EventJoinDenied, denialPayload("Room is full"))
		return
	}
	slot := slotIdx + 1
	r.Players[c.playerID] = &LobbyPlayer{Name: sanitizeName(c.name, slot)}
	r.PlayerOrder[slotIdx] = c.playerID
	r.metrics.SetPlayerCount(len(r.Players))

	c.conn.SetMetrics(r.metrics)
	if r.bindFn != nil {
		r.bindFn(c.conn, c.playerID)
	}
	r.sendFn(c.conn, EventJoinSuccess, joinSuccessPayload(r, c.playerID))
	r.emitRoomState()
}

// cmdEmitInitialState broadcasts the just-created room's first roomState
// and gameState frames; split out from Manager.handleCreateRoom so the
// emission happens from the room's own goroutine like every other
// broadcast, rather than racing it from the HTTP handler.
type cmdEmitInitialState struct{}

func (c *cmdEmitInitialState) apply(r *Room, now int64) {
	r.emitRoomState()
	r.emitGameState()
}

func joinSuccessPayload(r *Room, pid PlayerID) map[string]any {
	return map[string]any{
		"roomCode":    r.Code,
		"playerId":    string(pid),
		"playerIndex": r.slotOf(pid) - 1,
		"message":     "joined",
	}
}

func denialPayload(msg string) map[string]any {
	return map[string]any{"message": msg}
}

type cmdSetPlayerName struct {
	playerID PlayerID
	name     string
}

func (c *cmdSetPlayerName) apply(r *Room, now int64) {
	trimmed := trimName(c.name)
	if trimmed == "" {
		return
	}
	lp, ok := r.Players[c.playerID]
	if !ok {
		return
	}
	lp.Name = trimmed
	if ps, ok := r.PlayerStates[c.playerID]; ok {
		ps.Name = trimmed
	}
	r.emitRoomState()
}

type cmdSetWorld struct {
	playerID PlayerID
	worldID  int
}

func (c *cmdSetWorld) apply(r *Room, now int64) {
	if !r.isHost(c.playerID) {
		return
	}
	// Open Question (b): world changes while started are silently denied.
	if r.Started {
		return
	}
	r.World = c.worldID
	r.WorldRuntime = CloneRuntime(r.World, r.World2BaseY)
	r.GameState = &Snapshot{GameStatus: StatusWaiting, World: r.World}
	r.Inputs = make(map[PlayerID]InputFrame)
	r.PlayerStates = make(map[PlayerID]*PlayerState)
	r.emitRoomState()
	r.emitGameState()
}

type cmdSelectHero struct {
	conn     *ClientConn
	playerID PlayerID
	hero     string
}

func (c *cmdSelectHero) apply(r *Room, now int64) {
	lp, ok := r.Players[c.playerID]
	if !ok {
		return
	}
	if r.heroTaken(c.hero, c.playerID) {
		r.sendFn(c.conn, EventHeroDenied, denialPayload("Hero already taken"))
		return
	}
	hero := c.hero
	lp.Hero = &hero
	lp.Ready = false
	r.emitRoomState()
}

type cmdSetReady struct {
	conn     *ClientConn
	playerID PlayerID
	ready    bool
}

func (c *cmdSetReady) apply(r *Room, now int64) {
	lp, ok := r.Players[c.playerID]
	if !ok {
		return
	}
	if lp.Hero == nil {
		r.sendFn(c.conn, EventReadyDenied, denialPayload("Pick a hero first"))
		return
	}
	lp.Ready = c.ready
	r.emitRoomState()
}

type cmdStartGameNow struct {
	conn     *ClientConn
	playerID PlayerID
}

func (c *cmdStartGameNow) apply(r *Room, now int64) {
	if !r.isHost(c.playerID) {
		return
	}
	if !r.allPickedAndReady() {
		r.sendFn(c.conn, EventStartDenied, denialPayload("Everyone must pick a hero"))
		return
	}

	r.Started = true
	r.WorldRuntime = CloneRuntime(r.World, r.World2BaseY)
	r.PlayerStates = make(map[PlayerID]*PlayerState)
	r.Inputs = make(map[PlayerID]InputFrame)
	r.GameState = &Snapshot{GameStatus: StatusPlaying, World: r.World}
	r.LastStepAt = 0
	for _, pid := range r.PlayerOrder {
		if pid == "" {
			continue
		}
		r.ensurePlayerState(pid)
	}

	r.broadcastFn(EventStartGame, map[string]any{"type": EventStartGame})
	r.emitRoomState()
	r.emitGameState()
}

type cmdPlayerInput struct {
	playerID PlayerID
	input    InputFrame
	height   float64
	hasHeight bool
}

func (c *cmdPlayerInput) apply(r *Room, now int64) {
	if !r.Started {
		return
	}
	if _, ok := r.Players[c.playerID]; !ok {
		return
	}
	r.Inputs[c.playerID] = c.input

	if c.hasHeight && r.World == World2 {
		newBaseY := ClampWorld2BaseY(c.height - 80)
		if abs64(newBaseY-r.World2BaseY) >= 2 {
			delta := newBaseY - r.World2BaseY
			r.World2BaseY = newBaseY
			r.WorldRuntime = CloneRuntime(r.World, r.World2BaseY)
			for _, ps := range r.PlayerStates {
				ps.Y += delta
			}
		}
	}
}

func abs64(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// cmdDisconnectConn arms the reconnect grace timer for playerID. The
// Manager only enqueues this once it has confirmed (via the connection
// registry) that the player has no other live connection left.
type cmdDisconnectConn struct {
	playerID PlayerID
}

func (c *cmdDisconnectConn) apply(r *Room, now int64) {
	if c.playerID == "" {
		return
	}
	if _, ok := r.Players[c.playerID]; !ok {
		return
	}
	r.armGrace(c.playerID)
}

// cmdGraceExpired fires once a player's disconnect grace timer elapses
// without a reconnect; it removes the player for good.
type cmdGraceExpired struct {
	playerID PlayerID
}

func (c *cmdGraceExpired) apply(r *Room, now int64) {
	delete(r.graceTimers, c.playerID)
	if _, ok := r.Players[c.playerID]; !ok {
		return
	}
	delete(r.Players, c.playerID)
	delete(r.PlayerStates, c.playerID)
	for i, pid := range r.PlayerOrder {
		if pid == c.playerID {
			// Zero the slot rather than shifting the slice: every other
			// occupant's slot index must stay exactly where it was.
			r.PlayerOrder[i] = ""
			break
		}
	}
	r.metrics.SetPlayerCount(len(r.Players))
	if len(r.Players) == 0 {
		if r.onEmpty != nil {
			r.onEmpty(r.Code)
		}
		return
	}
	if r.isHost(c.playerID) {
		r.electHost()
	}
	r.emitRoomState()
}

package server

import (
	"time"

	"go.uber.org/zap"

	"platformserver/config"
)

// Room is the authoritative state for one lobby-through-match session. Every
// field below is owned exclusively by the goroutine running (*Room).run;
// nothing outside that goroutine may read or write them directly. Commands
// arrive over commandCh and are applied between ticks, never during one —
// generalizing the teacher's single input/leave channel pair to the full
// lobby-plus-simulation command set this spec requires.
type Room struct {
	Code        string
	MaxPlayers  int
	HostID      PlayerID
	Started     bool
	World       int
	World2BaseY float64

	// PlayerOrder is sized to MaxPlayers from creation; index i holds the
	// PlayerID occupying slot i+1, or "" if that slot is vacant. A departure
	// zeroes its own entry rather than shifting the slice, so every other
	// occupant's slot (spec.md §3/§8: "stable across disconnections") never
	// moves. New joins fill the first "" hole rather than appending.
	PlayerOrder  []PlayerID
	Players      map[PlayerID]*LobbyPlayer
	PlayerStates map[PlayerID]*PlayerState

	WorldRuntime *WorldRuntime
	GameState    *Snapshot
	Inputs       map[PlayerID]InputFrame

	LastStepAt int64
	DeadUntil  int64

	cfg     config.Config
	log     *zap.SugaredLogger
	metrics *RoomMetrics

	commandCh chan roomCommand
	stopCh    chan struct{}

	graceTimers map[PlayerID]*time.Timer

	broadcastFn func(event string, payload interface{})
	sendFn      func(conn *ClientConn, event string, payload interface{})
	bindFn      func(conn *ClientConn, pid PlayerID) []*ClientConn
	onEmpty     func(code string)
}

// NewRoom constructs a room in the lobby phase with hostID as its sole,
// founding member occupying slot 1.
func NewRoom(code string, maxPlayers int, hostID PlayerID, hostName string, cfg config.Config, log *zap.SugaredLogger) *Room {
	r := &Room{
		Code:         code,
		MaxPlayers:   maxPlayers,
		HostID:       hostID,
		World:        World1,
		World2BaseY:  float64(cfg.World2BaseY),
		PlayerOrder:  make([]PlayerID, maxPlayers),
		Players:      make(map[PlayerID]*LobbyPlayer),
		PlayerStates: make(map[PlayerID]*PlayerState),
		Inputs:       make(map[PlayerID]InputFrame),
		GameState:    &Snapshot{GameStatus: StatusWaiting, World: World1},
		cfg:          cfg,
		log:          log.With("room", code),
		metrics:      &RoomMetrics{},
		commandCh:    make(chan roomCommand, 256),
		stopCh:       make(chan struct{}),
		graceTimers:  make(map[PlayerID]*time.Timer),
		sendFn:       sendTo,
	}
	r.Players[hostID] = &LobbyPlayer{Name: sanitizeName(hostName, 1)}
	r.PlayerOrder[0] = hostID
	r.metrics.SetPlayerCount(1)
	return r
}

// detachStale closes every connection in conns (sockets the registry already
// dropped in favor of the reconnecting one). Their own deferred disconnect
// handling still runs, but Manager.handleDisconnect checks the registry
// before arming a grace timer, so finding the player still has a live
// connection — the one that just replaced them — makes it a no-op. Closing
// here is the only thing this needs to do; reaching into the stale conn's
// own roomCode/playerID fields from this goroutine would race its read pump.
func (r *Room) detachStale(conns []*ClientConn) {
	for _, c := range conns {
		c.Close()
	}
}

// Enqueue submits a command for processing by the room's own goroutine. It
// never blocks the caller: a full queue means the room is falling behind,
// and the command is dropped rather than stalling the transport's read
// loop, matching the "no back-pressure beyond socket level" policy.
func (r *Room) Enqueue(cmd roomCommand) {
	select {
	case r.commandCh <- cmd:
	default:
		r.metrics.IncCommandsDropped()
		r.log.Warnw("command dropped, room command queue full")
	}
}

func (r *Room) run() {
	interval := time.Duration(r.tickIntervalMs()) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case cmd := <-r.commandCh:
			cmd.apply(r, nowMs())
		case <-ticker.C:
			r.onTick(nowMs())
		case <-r.stopCh:
			return
		}
	}
}

func (r *Room) stop() {
	close(r.stopCh)
	for _, t := range r.graceTimers {
		t.Stop()
	}
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func (r *Room) tickIntervalMs() int {
	if activeTuning.tickRateHz > 0 {
		if v := 1000 / activeTuning.tickRateHz; v >= 10 {
			return v
		}
		return 10
	}
	return r.cfg.TickIntervalMs()
}

func (r *Room) tickRateHz() int {
	if activeTuning.tickRateHz > 0 {
		return activeTuning.tickRateHz
	}
	if r.cfg.TickRate > 0 {
		return r.cfg.TickRate
	}
	return 60
}

func (r *Room) respawnDelayMs() int {
	if activeTuning.respawnDelayMs > 0 {
		return activeTuning.respawnDelayMs
	}
	return r.cfg.RespawnDelayMs
}

func (r *Room) disconnectGraceMs() int {
	if activeTuning.disconnectGraceMs > 0 {
		return activeTuning.disconnectGraceMs
	}
	return r.cfg.DisconnectGraceMs
}

// electHost promotes the occupant of the lowest remaining slot to host.
// A no-op if the room has no players left.
func (r *Room) electHost() {
	for _, pid := range r.PlayerOrder {
		if pid == "" {
			continue
		}
		if _, ok := r.Players[pid]; ok {
			r.HostID = pid
			return
		}
	}
}

func (r *Room) isHost(pid PlayerID) bool {
	return r.HostID == pid
}

// slotOf returns the 1-based slot for a player, or 0 if absent. Slots are
// assigned once at join and never move, so this is stable across departures.
func (r *Room) slotOf(pid PlayerID) int {
	if pid == "" {
		return 0
	}
	for i, id := range r.PlayerOrder {
		if id == pid {
			return i + 1
		}
	}
	return 0
}

// firstVacantSlot returns the 0-based index of the first "" hole in
// PlayerOrder, or -1 if every slot up to MaxPlayers is occupied.
func (r *Room) firstVacantSlot() int {
	for i, id := range r.PlayerOrder {
		if id == "" {
			return i
		}
	}
	return -1
}

// heroTaken reports whether hero is already selected by a different player.
func (r *Room) heroTaken(hero string, by PlayerID) bool {
	for pid, lp := range r.Players {
		if pid == by {
			continue
		}
		if lp.Hero != nil && *lp.Hero == hero {
			return true
		}
	}
	return false
}

// allPickedAndReady reports whether every present player has a hero
// selected and is ready.
func (r *Room) allPickedAndReady() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, lp := range r.Players {
		if lp.Hero == nil || !lp.Ready {
			return false
		}
	}
	return true
}

// ensurePlayerState lazily creates PlayerState for pid at its slot's spawn
// point, repairing any non-finite coordinates first.
func (r *Room) ensurePlayerState(pid PlayerID) *PlayerState {
	ps, ok := r.PlayerStates[pid]
	if !ok {
		slot := r.slotOf(pid)
		x, y := r.WorldRuntime.SpawnPosition(slot)
		ps = &PlayerState{Slot: slot, PlayerID: pid, X: x, Y: y, Color: colorForSlot(slot)}
		if lp := r.Players[pid]; lp != nil {
			ps.Hero = lp.Hero
			ps.Name = lp.Name
		}
		r.PlayerStates[pid] = ps
	}
	ps.Repair(r.WorldRuntime)
	return ps
}

func (r *Room) emitRoomState() {
	r.broadcastFn(EventRoomState, r.buildRoomStateView())
}

func (r *Room) emitGameState() {
	r.refreshPlayersView()
	r.broadcastFn(EventGameState, r.buildGameStateView())
}
